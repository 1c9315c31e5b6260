// Package journal implements the machine-readable event journal.
//
// Each run-loop event is serialized as a msgpack map behind a 4-byte
// big-endian length prefix, in emission order. The format is append-only
// and stream-decodable, so tooling can tail a journal while a run is still
// in flight.
package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/gauntlet/types"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// MaxPayloadSize is the maximum payload size.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
)

// Record type discriminants.
const (
	TypeRunStart  = "run_start"
	TypeWait      = "wait"
	TypeTimeout   = "timeout"
	TypeResult    = "result"
	TypeRunFinish = "run_finish"
)

// Record is one journal entry. Fields are populated per Type; absent
// fields are omitted from the wire encoding.
type Record struct {
	// Type is the record discriminant.
	Type string `msgpack:"type"`
	// Version is the journal format version (lockstep with the harness).
	Version string `msgpack:"version"`
	// Name is the test name (wait, timeout, result).
	Name string `msgpack:"name,omitempty"`
	// TestCount is the number of scheduled entries (run_start).
	TestCount int `msgpack:"test_count,omitempty"`
	// FilteredOut is the number of entries removed by filters (run_start).
	FilteredOut int `msgpack:"filtered_out,omitempty"`
	// Outcome is one of ok|ignored|allowed_fail|failed|bench (result).
	Outcome string `msgpack:"outcome,omitempty"`
	// Message carries the failure message when one exists (result).
	Message string `msgpack:"message,omitempty"`
	// Stdout is the captured output (result).
	Stdout []byte `msgpack:"stdout,omitempty"`
	// MedianNs and DeviationNs describe a measured benchmark (result).
	MedianNs    float64 `msgpack:"median_ns,omitempty"`
	DeviationNs float64 `msgpack:"deviation_ns,omitempty"`
	// MBPerSec is the benchmark throughput, zero when no bytes hint was
	// set (result).
	MBPerSec uint64 `msgpack:"mb_per_sec,omitempty"`
	// Counters holds the final tallies (run_finish).
	Counters map[string]int `msgpack:"counters,omitempty"`
}

// FrameErrorKind classifies journal frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack encoding or decoding error.
	FrameErrorDecode
)

// FrameError represents a frame encoding or decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error { return e.Err }

// Writer appends length-prefixed records to an output stream.
type Writer struct {
	w io.Writer

	// pendingFilteredOut buffers the filtered-out count until the
	// descriptor list arrives; both fold into one run_start record.
	pendingFilteredOut int
}

// NewWriter creates a journal writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord encodes rec and appends one frame. Any error is an IO error
// from the caller's perspective and aborts the run.
func (jw *Writer) WriteRecord(rec *Record) error {
	if rec.Version == "" {
		rec.Version = types.Version
	}
	payload, err := msgpack.Marshal(rec)
	if err != nil {
		return &FrameError{Kind: FrameErrorDecode, Msg: "failed to encode journal record", Err: err}
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := jw.w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = jw.w.Write(payload)
	return err
}

// WriteEvent maps a run-loop event onto a record and appends it.
// FilteredOut and Filtered fold into a single run_start record, so the
// caller passes them in that order and the writer holds the count until
// the descriptor list arrives.
func (jw *Writer) WriteEvent(ev types.Event) error {
	switch e := ev.(type) {
	case types.EventFilteredOut:
		jw.pendingFilteredOut = e.Count
		return nil
	case types.EventFiltered:
		return jw.WriteRecord(&Record{
			Type:        TypeRunStart,
			TestCount:   len(e.Descs),
			FilteredOut: jw.pendingFilteredOut,
		})
	case types.EventWait:
		return jw.WriteRecord(&Record{Type: TypeWait, Name: e.Desc.Name})
	case types.EventTimeout:
		return jw.WriteRecord(&Record{Type: TypeTimeout, Name: e.Desc.Name})
	case types.EventResult:
		rec := &Record{
			Type:    TypeResult,
			Name:    e.Desc.Name,
			Outcome: outcomeString(e.Result),
			Stdout:  e.Stdout,
		}
		switch e.Result.Kind {
		case types.ResultFailedMsg:
			rec.Message = e.Result.Message
		case types.ResultBench:
			summ := e.Result.Bench.NsIterSumm
			rec.MedianNs = summ.Median
			rec.DeviationNs = summ.Max - summ.Min
			rec.MBPerSec = e.Result.Bench.MBPerSec
		}
		return jw.WriteRecord(rec)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

// WriteFinish appends the terminal record with the run's final counters.
func (jw *Writer) WriteFinish(counters map[string]int) error {
	return jw.WriteRecord(&Record{Type: TypeRunFinish, Counters: counters})
}

// outcomeString maps a result onto its journal outcome discriminant.
func outcomeString(r types.Result) string {
	switch r.Kind {
	case types.ResultOk:
		return "ok"
	case types.ResultIgnored:
		return "ignored"
	case types.ResultAllowedFail:
		return "allowed_fail"
	case types.ResultBench:
		return "bench"
	default:
		return "failed"
	}
}

// Reader decodes length-prefixed records from a stream.
type Reader struct {
	r io.Reader
}

// NewReader creates a journal reader. Wraps r with bufio.Reader to reduce
// syscall overhead on unbuffered sources.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// ReadRecord reads a single record.
//
// Errors:
//   - io.EOF: stream ended cleanly (no more records)
//   - *FrameError with Kind=FrameErrorPartial: truncated frame
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit
//   - *FrameError with Kind=FrameErrorDecode: invalid msgpack payload
func (jr *Reader) ReadRecord() (*Record, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(jr.r, lengthBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read length prefix", Err: err}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(jr.r, payload); err != nil {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read payload", Err: err}
	}

	var rec Record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode journal record", Err: err}
	}
	return &rec, nil
}
