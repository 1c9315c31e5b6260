package metrics

import "testing"

func TestMap_InsertAndGet(t *testing.T) {
	m := NewMap()
	m.Insert("hash::fnv", 1200.5, 30.0)

	got, ok := m.Get("hash::fnv")
	if !ok {
		t.Fatal("metric not found")
	}
	if got.Value != 1200.5 || got.Noise != 30.0 {
		t.Errorf("metric = %+v", got)
	}
}

func TestMap_InsertReplaces(t *testing.T) {
	m := NewMap()
	m.Insert("a", 1, 1)
	m.Insert("a", 2, 2)
	if m.Len() != 1 {
		t.Errorf("len = %d, want 1", m.Len())
	}
	got, _ := m.Get("a")
	if got.Value != 2 {
		t.Errorf("value = %v, want 2", got.Value)
	}
}

func TestMap_NamesSorted(t *testing.T) {
	m := NewMap()
	m.Insert("zeta", 1, 0)
	m.Insert("alpha", 1, 0)
	m.Insert("mid", 1, 0)

	names := m.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestMap_String(t *testing.T) {
	m := NewMap()
	m.Insert("b", 2, 0.5)
	m.Insert("a", 1, 0.25)
	if got, want := m.String(), "a: 1 (+/- 0.25), b: 2 (+/- 0.5)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
