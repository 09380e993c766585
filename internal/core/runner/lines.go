package runner

import "bytes"

// LineWriter splits a byte stream into complete lines. A partial trailing
// line is held until the next Write or Flush.
type LineWriter struct {
	buf  []byte
	emit func(line string)
}

func NewLineWriter(emit func(line string)) *LineWriter {
	return &LineWriter{emit: emit}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	start := 0
	for {
		i := bytes.IndexByte(w.buf[start:], '\n')
		if i < 0 {
			break
		}
		w.deliver(w.buf[start : start+i])
		start += i + 1
	}

	if start > 0 {
		rest := make([]byte, len(w.buf)-start)
		copy(rest, w.buf[start:])
		w.buf = rest
	}
	return len(p), nil
}

// Flush delivers any buffered partial line.
func (w *LineWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.deliver(w.buf)
	w.buf = nil
}

func (w *LineWriter) deliver(line []byte) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if w.emit != nil {
		w.emit(string(line))
	}
}
