// Package wire implements the parent/child codec for worker processes.
//
// Each pipe carries a stream of gob-framed values: the parent writes one
// Request per work item, the child answers with exactly one Response, in
// strict request/response order. End of stream on the request pipe is the
// child's only shutdown signal.
package wire

import (
	"bytes"
	"encoding/gob"
	"io"
)

// Sentinel tags carried by an Envelope instead of a serialized error value.
const (
	SentinelNone  = ""
	SentinelBreak = "break"
	SentinelKill  = "kill"
)

// Request asks a worker process to run one work item.
type Request struct {
	// Index is the item's position in the input slice.
	Index int
	// Item is the gob-encoded item value. Worker processes share no memory
	// with the parent, so every item crosses the pipe explicitly.
	Item []byte
	// Discard tells the worker not to ship the result value back, saving
	// transport cost when the caller throws results away.
	Discard bool
}

// Response carries the outcome of one Request.
type Response struct {
	Index int
	// Result is the gob-encoded result value; empty when Discard was set
	// or when Err is non-nil.
	Result []byte
	Err    *Envelope
}

// Envelope wraps an error for transport across the process boundary.
// It always carries the formatted message; Encoded additionally holds a
// gob encoding of the concrete error value when one could be produced.
type Envelope struct {
	Sentinel string
	Message  string
	Encoded  []byte
}

// Codec reads and writes framed values over a pipe pair.
// It is not safe for concurrent use; each worker owns exactly one.
type Codec struct {
	enc *gob.Encoder
	dec *gob.Decoder
}

// NewCodec builds a codec reading from r and writing to w.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		enc: gob.NewEncoder(w),
		dec: gob.NewDecoder(r),
	}
}

func (c *Codec) WriteRequest(req *Request) error {
	return c.enc.Encode(req)
}

func (c *Codec) ReadRequest() (*Request, error) {
	var req Request
	if err := c.dec.Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Codec) WriteResponse(resp *Response) error {
	return c.enc.Encode(resp)
}

func (c *Codec) ReadResponse() (*Response, error) {
	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Encode gob-encodes a single value.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode gob-decodes a single value into out, which must be a pointer.
func Decode(b []byte, out any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(out)
}

// EncodeError attempts a gob encoding of err's concrete value.
// It returns nil when the value cannot cross the boundary, for example
// when the concrete type has no exported fields or is not registered
// with the gob package. Callers fall back to the Envelope message.
func EncodeError(err error) []byte {
	var buf bytes.Buffer
	if encErr := gob.NewEncoder(&buf).Encode(&err); encErr != nil {
		return nil
	}
	return buf.Bytes()
}

// DecodeError reverses EncodeError. The second return is false when no
// usable error value could be recovered.
func DecodeError(b []byte) (error, bool) {
	if len(b) == 0 {
		return nil, false
	}
	var err error
	if decErr := gob.NewDecoder(bytes.NewReader(b)).Decode(&err); decErr != nil {
		return nil, false
	}
	return err, err != nil
}
