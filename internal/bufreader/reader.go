// Package bufreader implements a buffered io.Reader, trimmed from the
// read/seek buffer the WAV demultiplexer's source repository carries: WAV
// frame iteration only ever pulls a handful of bytes per channel per
// sample, never seeks, so the Seek half of that type is dead weight here
// and has been cut along with its test suite.
package bufreader

import (
	"errors"
	"io"
)

const defaultBufSize = 4096

const minBufSize = 16

// Reader implements buffering for an io.Reader.
type Reader struct {
	buf  []byte
	rd   io.Reader
	r, w int // buf read and write positions within buf
	err  error
}

// NewReaderSize returns a new Reader whose buffer has at least the given
// size. If rd is already a *Reader with a large enough buffer, it is
// returned unchanged.
func NewReaderSize(rd io.Reader, size int) *Reader {
	if b, ok := rd.(*Reader); ok && len(b.buf) >= size {
		return b
	}
	if size < minBufSize {
		size = minBufSize
	}
	return &Reader{buf: make([]byte, size), rd: rd}
}

// NewReader returns a new Reader whose buffer has the default size.
func NewReader(rd io.Reader) *Reader {
	return NewReaderSize(rd, defaultBufSize)
}

var errNegativeRead = errors.New("bufreader: reader returned negative count from Read")

func (b *Reader) readErr() error {
	err := b.err
	b.err = nil
	return err
}

// buffered returns the number of bytes that can be read from the current
// buffer.
func (b *Reader) buffered() int { return b.w - b.r }

// Read reads data into p. It returns the number of bytes read into p. The
// bytes are taken from at most one Read on the underlying Reader, hence n
// may be less than len(p). To read exactly len(p) bytes, use
// io.ReadFull(b, p).
func (b *Reader) Read(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		if b.buffered() > 0 {
			return 0, nil
		}
		return 0, b.readErr()
	}
	if b.r == b.w {
		if b.err != nil {
			return 0, b.readErr()
		}
		if len(p) >= len(b.buf) {
			// Large read, empty buffer.
			// Read directly into p to avoid copy.
			n, b.err = b.rd.Read(p)
			if n < 0 {
				panic(errNegativeRead)
			}
			return n, b.readErr()
		}
		// One read.
		b.r = 0
		b.w = 0
		n, b.err = b.rd.Read(b.buf)
		if n < 0 {
			panic(errNegativeRead)
		}
		if n == 0 {
			return 0, b.readErr()
		}
		b.w += n
	}

	// copy as much as we can
	n = copy(p, b.buf[b.r:b.w])
	b.r += n
	return n, nil
}
