package wav

import (
	"encoding/binary"
	"io"

	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"
)

// DataChunk reads interleaved PCM sample frames from one "data" chunk. It is
// obtained via Info.NextDataChunk and exhausts itself at the chunk's
// declared byte length. If the file ends before that length, Next returns
// the wrapped read error rather than io.EOF.
type DataChunk struct {
	format    Format
	remaining int64 // bytes left in this chunk.
	r         io.Reader
}

// NextDataChunk reads the next "data" chunk's header and returns a
// DataChunk positioned at its first sample frame. It returns io.EOF at end
// of file and ErrChunkType when the next chunk is not a "data" chunk; a
// file may carry more than one data chunk back to back.
func (info *Info) NextDataChunk() (*DataChunk, error) {
	var magic [4]byte
	if _, err := io.ReadFull(info.r, magic[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.WithStack(err)
	}
	if string(magic[:]) != "data" {
		return nil, errutil.Err(ErrChunkType)
	}
	size, err := readU32LE(info.r)
	if err != nil {
		return nil, err
	}
	return &DataChunk{format: info.Format, remaining: int64(size), r: info.r}, nil
}

// bytesPerFrame is the size in bytes of one inter-channel sample frame.
func (dc *DataChunk) bytesPerFrame() int {
	return int(dc.format.BlockAlign())
}

// Next reads one inter-channel sample frame. It returns io.EOF when the
// chunk's declared byte length is exhausted.
func (dc *DataChunk) Next() (SampleFrame, error) {
	if dc.remaining < int64(dc.bytesPerFrame()) {
		return nil, io.EOF
	}

	frame := make(SampleFrame, dc.format.NumChannels)
	for ch := range frame {
		sample, n, err := readSample(dc.r, dc.format.BitsPerSample)
		if err != nil {
			return nil, err
		}
		dc.remaining -= int64(n)
		frame[ch] = sample
	}
	return frame, nil
}

// readSample reads one channel's worth of a sample at the given bit depth,
// widening it to int32: 8-bit samples are unsigned (WAV convention), 16-
// and 24-bit samples are little-endian signed.
func readSample(r io.Reader, bps uint16) (sample int32, nbyte int, err error) {
	switch bps {
	case 8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, 0, errors.WithStack(err)
		}
		return int32(b[0]), 1, nil
	case 16:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, 0, errors.WithStack(err)
		}
		return int32(int16(binary.LittleEndian.Uint16(b[:]))), 2, nil
	case 24:
		var b [3]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, 0, errors.WithStack(err)
		}
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&(1<<23) != 0 {
			v |= ^int32(0) << 24 // sign-extend bit 23.
		}
		return v, 3, nil
	default:
		return 0, 0, errutil.Newf("wav: unsupported bits-per-sample %d", bps)
	}
}

// Frames returns an iterator function yielding one SampleFrame per call
// across every data chunk in info, advancing to the next chunk
// transparently when the current one is exhausted. It returns (nil, false)
// at end-of-file.
func (info *Info) Frames() func() (SampleFrame, bool, error) {
	var dc *DataChunk
	return func() (SampleFrame, bool, error) {
		for {
			if dc == nil {
				next, err := info.NextDataChunk()
				if err == io.EOF {
					return nil, false, nil
				}
				if err != nil {
					return nil, false, err
				}
				dc = next
			}
			frame, err := dc.Next()
			if err == io.EOF {
				dc = nil
				continue
			}
			if err != nil {
				return nil, false, err
			}
			return frame, true, nil
		}
	}
}

// Windows returns an iterator function yielding successive batches of n
// sample frames (the final batch may be shorter). It returns (nil, false)
// once no frames remain.
func (info *Info) Windows(n int) func() ([]SampleFrame, bool, error) {
	next := info.Frames()
	return func() ([]SampleFrame, bool, error) {
		batch := make([]SampleFrame, 0, n)
		for len(batch) < n {
			frame, ok, err := next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				break
			}
			batch = append(batch, frame)
		}
		if len(batch) == 0 {
			return nil, false, nil
		}
		return batch, true, nil
	}
}

// ByteRateWindows returns an iterator yielding one window per second of
// audio: each batch holds Format.ByteRate()/BlockAlign() frames, i.e.
// SampleRate frames, except that the final batch may be shorter.
func (info *Info) ByteRateWindows() func() ([]SampleFrame, bool, error) {
	return info.Windows(int(info.Format.SampleRate))
}
