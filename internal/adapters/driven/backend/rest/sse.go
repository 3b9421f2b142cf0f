package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// dataPrefix marks an event line on the chat stream.
var dataPrefix = []byte("data: ")

// readChunkSize is the size of each read from the stream body.
const readChunkSize = 4096

// streamDecoder turns a byte stream of "data: {json}\n" lines into
// handler calls. Bytes are buffered until a newline arrives, so lines
// split across reads decode exactly as if they had arrived whole. The
// split happens on the ASCII newline byte, which never occurs inside a
// multi-byte UTF-8 sequence.
type streamDecoder struct {
	handlers driven.StreamHandlers
	buf      []byte
	terminal bool
}

func newStreamDecoder(h driven.StreamHandlers) *streamDecoder {
	return &streamDecoder{handlers: h}
}

// Write feeds raw bytes to the decoder and dispatches every complete line.
func (d *streamDecoder) Write(p []byte) (int, error) {
	if d.terminal {
		return len(p), nil
	}
	d.buf = append(d.buf, p...)

	start := 0
	for !d.terminal {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}
		d.line(d.buf[start : start+i])
		start += i + 1
	}
	if d.terminal {
		d.buf = nil
	} else {
		d.buf = append(d.buf[:0], d.buf[start:]...)
	}
	return len(p), nil
}

// Flush processes a final line that was not newline-terminated.
func (d *streamDecoder) Flush() {
	if !d.terminal && len(d.buf) > 0 {
		d.line(d.buf)
	}
	d.buf = nil
}

// Terminal reports whether a done or error event was seen.
func (d *streamDecoder) Terminal() bool {
	return d.terminal
}

func (d *streamDecoder) line(raw []byte) {
	raw = bytes.TrimSuffix(raw, []byte("\r"))
	if !bytes.HasPrefix(raw, dataPrefix) {
		return
	}
	payload := raw[len(dataPrefix):]

	var ev domain.StreamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Debug("skip malformed stream line %q: %v", payload, err)
		return
	}
	if !d.handlers.Dispatch(ev) {
		log.Debug("skip unknown stream event type %q", ev.Type)
		return
	}
	if ev.Type == domain.EventDone || ev.Type == domain.EventError {
		d.terminal = true
	}
}

// decodeStream reads r to the end (or to the first terminal event) and
// dispatches events to h.
func decodeStream(r io.Reader, h driven.StreamHandlers) error {
	d := newStreamDecoder(h)
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			_, _ = d.Write(chunk[:n])
			if d.Terminal() {
				return nil
			}
		}
		if err == io.EOF {
			d.Flush()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
