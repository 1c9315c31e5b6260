// Command gauntlet-demo registers a small sample suite and hands it to
// the harness CLI. It exists to exercise the whole stack from a real
// main: filtering, parallel dispatch, capture, classification, the
// benchmark sampler, and every formatter.
//
// Usage:
//
//	gauntlet-demo [OPTIONS] [FILTER]
package main

import (
	"fmt"
	"hash/fnv"

	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/cli/cmd"
	"github.com/justapithecus/gauntlet/runtime"
	"github.com/justapithecus/gauntlet/types"
)

func main() {
	cmd.Main([]runtime.TestCase{
		{
			Desc: types.TestDesc{Name: "arith::add"},
			Fn: func() {
				if 2+2 != 4 {
					panic("addition is broken")
				}
			},
		},
		{
			Desc: types.TestDesc{Name: "arith::print"},
			Fn: func() {
				fmt.Println("computing 6*7 =", 6*7)
			},
		},
		{
			Desc: types.TestDesc{Name: "arith::slow", Ignore: true},
			Fn: func() {
				for i := 0; i < 1_000_000_000; i++ {
					_ = i
				}
			},
		},
		{
			Desc: types.TestDesc{
				Name:        "parse::rejects_garbage",
				ShouldPanic: types.PanicsWith("invalid input"),
			},
			Fn: func() {
				panic("invalid input: garbage")
			},
		},
		{
			Desc: types.TestDesc{Name: "net::flaky_lookup", AllowFail: true},
			Fn: func() {
				panic("connection refused")
			},
		},
		{
			Desc:    types.TestDesc{Name: "hash::fnv_1k", Padding: types.PadOnRight},
			BenchFn: benchFnv1k,
		},
	})
}

func benchFnv1k(b *bench.B) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	b.Bytes = uint64(len(data))
	b.Iter(func() any {
		h := fnv.New64a()
		_, _ = h.Write(data)
		return h.Sum64()
	})
}
