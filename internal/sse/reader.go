// Package sse reads text/event-stream bodies frame by frame.
package sse

import (
	"bufio"
	"bytes"
	"io"

	"github.com/mutantautomate/mutant/pkg/constants"
)

// Frame is one dispatched server-sent event.
type Frame struct {
	Event string
	ID    string
	Data  []byte
}

// Reader splits an event stream into frames.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader returns a Reader over r. Lines longer than
// constants.MaxStreamFrameSize fail with bufio.ErrTooLong.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxStreamFrameSize)
	return &Reader{scanner: scanner}
}

// Next returns the next frame carrying data. It returns io.EOF once the
// stream ends cleanly; a trailing frame without its blank line is still
// delivered.
func (r *Reader) Next() (Frame, error) {
	var (
		frame   Frame
		data    [][]byte
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Bytes()

		if len(line) == 0 {
			if hasData {
				frame.Data = bytes.Join(data, []byte("\n"))
				return frame, nil
			}
			frame = Frame{}
			continue
		}

		// Comment lines are keep-alives.
		if line[0] == ':' {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "data":
			data = append(data, bytes.Clone(value))
			hasData = true
		case "event":
			frame.Event = string(value)
		case "id":
			frame.ID = string(value)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	if hasData {
		frame.Data = bytes.Join(data, []byte("\n"))
		return frame, nil
	}
	return Frame{}, io.EOF
}

func splitField(line []byte) (string, []byte) {
	name, value, found := bytes.Cut(line, []byte(":"))
	if !found {
		return string(line), nil
	}
	value, _ = bytes.CutPrefix(value, []byte(" "))
	return string(name), value
}
