package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed reports a line that was delimited correctly but did not parse
// as JSON. It is a protocol error, not a connection failure: the stream stays
// usable because the bad line has already been consumed.
var ErrMalformed = errors.New("malformed message")

// Codec frames newline-delimited JSON messages over a byte stream, plus raw
// exact-byte-count payloads that share the same read buffer. A single network
// read may carry several messages, a partial message, or a message followed
// by raw bytes; anything read past the current unit is retained for the next
// call, never discarded.
type Codec struct {
	r *bufio.Reader
	w io.Writer
}

// NewCodec wraps a bidirectional stream. The codec owns the read buffer, so
// all reads from the stream must go through it once it is created.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r: bufio.NewReaderSize(rw, 16*1024),
		w: rw,
	}
}

// WriteMessage serializes v as UTF-8 JSON terminated by a single newline.
// The frame is sent as one write.
func (c *Codec) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	data = append(data, '\n')
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// ReadMessage consumes exactly one delimited unit and unmarshals it into v.
// A clean end-of-stream before any byte of the next unit returns io.EOF; an
// end-of-stream mid-unit returns io.ErrUnexpectedEOF.
func (c *Codec) ReadMessage(v any) error {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read message: %w", err)
	}

	line = bytes.TrimSuffix(line, []byte{'\n'})
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// ReadRaw drains exactly n bytes from the stream into dst. It is used for
// raw payloads that follow a JSON header and carry no delimiter of their own.
func (c *Codec) ReadRaw(dst io.Writer, n int64) error {
	written, err := io.CopyN(dst, c.r, n)
	if err != nil {
		return fmt.Errorf("read raw payload: got %d of %d bytes: %w", written, n, err)
	}
	return nil
}

// ReadFull reads exactly n raw bytes and returns them.
func (c *Codec) ReadFull(n int64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(n))
	if err := c.ReadRaw(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Discard throws away exactly n raw bytes, keeping the stream framed when a
// transfer header was rejected but its payload is already in flight.
func (c *Codec) Discard(n int64) error {
	return c.ReadRaw(io.Discard, n)
}

// WriteRaw copies src verbatim to the stream, after the caller has sent a
// header announcing the byte count.
func (c *Codec) WriteRaw(src io.Reader) (int64, error) {
	return io.Copy(c.w, src)
}
