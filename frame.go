package smtpkit

import "bytes"

// frameScanner splits a byte stream into CRLF (or bare LF) terminated lines.
// It is resumable: feed can be called repeatedly as bytes arrive off the
// wire, and it never rescans a prefix it has already confirmed contains no
// newline.
type frameScanner struct {
	buf     []byte
	scanned int
}

// feed appends data to the internal buffer and returns every complete frame
// (terminator stripped) that can now be extracted. Bytes belonging to an
// incomplete trailing frame remain buffered for the next call.
func (f *frameScanner) feed(data []byte) [][]byte {
	f.buf = append(f.buf, data...)
	var frames [][]byte
	for {
		idx := bytes.IndexByte(f.buf[f.scanned:], '\n')
		if idx < 0 {
			f.scanned = len(f.buf)
			break
		}
		newline := f.scanned + idx
		end := newline
		if end > 0 && f.buf[end-1] == '\r' {
			end--
		}
		frame := make([]byte, end)
		copy(frame, f.buf[:end])
		frames = append(frames, frame)
		f.buf = f.buf[newline+1:]
		f.scanned = 0
	}
	return frames
}

// leftover returns whatever bytes remain buffered without yet forming a
// complete frame.
func (f *frameScanner) leftover() []byte {
	return f.buf
}
