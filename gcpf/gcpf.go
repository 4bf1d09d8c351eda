package gcpf

// This file contains the header and block table parsing of the GCPF
// framing. Decompression of individual blocks lives in zstd.go.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// Magic is the signature every compressed container starts with.
	Magic = "GCPF"
	// CompressionModeZstd is the only supported compression mode.
	CompressionModeZstd = 2
)

var (
	// ErrZeroBlockSize is returned when the header declares a block size of 0.
	ErrZeroBlockSize = errors.New("gcpf: block size cannot be zero")
	// ErrMagicNotUTF8 is returned when the signature bytes are not valid UTF-8.
	ErrMagicNotUTF8 = errors.New("gcpf: magic is not valid utf-8")
)

// MagicError is returned when the container signature does not match Magic.
type MagicError struct {
	Want, Got string
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("gcpf: expected godot magic header %q, got %q", e.Want, e.Got)
}

// CompressionModeError is returned for any compression mode other than
// CompressionModeZstd.
type CompressionModeError struct {
	Got uint32
}

func (e *CompressionModeError) Error() string {
	return fmt.Sprintf("gcpf: expected compression mode %d (zstd), got %d", CompressionModeZstd, e.Got)
}

// Header describes the framing of a compressed container.
type Header struct {
	Magic           string
	CompressionMode uint32
	BlockSize       uint32 // uncompressed bytes per block
	TotalSize       uint32 // uncompressed payload bytes

	// BlockSizes holds the compressed size of each block, in order.
	BlockSizes []uint32
}

// BlockCount returns the number of blocks a container with the passed sizes
// declares.
//
// The count is always one higher than the number of full blocks, even when
// totalSize is an exact multiple of blockSize; writers emit the trailing
// block regardless.
func BlockCount(totalSize, blockSize uint32) int {
	return int(totalSize/blockSize) + 1
}

// ReadHeader reads the signature, compression mode, sizes and the block table
// from r. On success r is positioned at the first compressed block.
func ReadHeader(r io.Reader) (*Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "gcpf: reading magic")
	}
	if !utf8.Valid(magic[:]) {
		return nil, ErrMagicNotUTF8
	}
	if string(magic[:]) != Magic {
		return nil, &MagicError{Want: Magic, Got: string(magic[:])}
	}

	h := &Header{Magic: string(magic[:])}
	if err := binary.Read(r, binary.LittleEndian, &h.CompressionMode); err != nil {
		return nil, errors.Wrap(err, "gcpf: reading compression mode")
	}
	if h.CompressionMode != CompressionModeZstd {
		return nil, &CompressionModeError{Got: h.CompressionMode}
	}

	if err := binary.Read(r, binary.LittleEndian, &h.BlockSize); err != nil {
		return nil, errors.Wrap(err, "gcpf: reading block size")
	}
	if h.BlockSize == 0 {
		return nil, ErrZeroBlockSize
	}
	if err := binary.Read(r, binary.LittleEndian, &h.TotalSize); err != nil {
		return nil, errors.Wrap(err, "gcpf: reading total size")
	}

	// The table grows as it is read so that a bogus total size on a
	// truncated stream fails with EOF instead of a huge allocation.
	count := BlockCount(h.TotalSize, h.BlockSize)
	for i := 0; i < count; i++ {
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, errors.Wrapf(err, "gcpf: reading size of block %d/%d", i, count)
		}
		h.BlockSizes = append(h.BlockSizes, size)
	}
	glog.V(2).Infof("gcpf: block size %d, total size %d, %d blocks", h.BlockSize, h.TotalSize, count)

	return h, nil
}

// Options controls decompression.
type Options struct {
	// Parallel decompresses blocks concurrently. Output is identical to the
	// sequential decoder.
	Parallel bool
}

// Decompress reads a whole container from r and returns the concatenation of
// all of its decompressed blocks.
func Decompress(r io.Reader) ([]byte, error) {
	return DecompressWithOptions(r, nil)
}

// DecompressWithOptions is like Decompress, but allows configuring the
// decoder. A nil o means default options.
func DecompressWithOptions(r io.Reader, o *Options) ([]byte, error) {
	if o == nil {
		o = &Options{}
	}

	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	blocks := make([][]byte, len(h.BlockSizes))
	for i, size := range h.BlockSizes {
		// Only as much memory as the stream actually delivers.
		buf := bytes.Buffer{}
		n, err := buf.ReadFrom(io.LimitReader(r, int64(size)))
		if err != nil {
			return nil, errors.Wrapf(err, "gcpf: reading block %d", i)
		}
		if n != int64(size) {
			return nil, errors.Wrapf(io.ErrUnexpectedEOF, "gcpf: block %d: read %d bytes, want %d", i, n, size)
		}
		blocks[i] = buf.Bytes()
	}

	out := make([][]byte, len(blocks))
	if o.Parallel {
		var g errgroup.Group
		for i := range blocks {
			i := i
			g.Go(func() error {
				d, err := decompressBlock(blocks[i])
				if err != nil {
					return errors.Wrapf(err, "gcpf: decompressing block %d", i)
				}
				out[i] = d
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range blocks {
			d, err := decompressBlock(blocks[i])
			if err != nil {
				return nil, errors.Wrapf(err, "gcpf: decompressing block %d", i)
			}
			out[i] = d
		}
	}

	total := 0
	for _, d := range out {
		total += len(d)
	}
	payload := make([]byte, 0, total)
	for _, d := range out {
		payload = append(payload, d...)
	}
	if uint64(len(payload)) != uint64(h.TotalSize) {
		glog.V(1).Infof("gcpf: decompressed %d bytes, header declared %d", len(payload), h.TotalSize)
	}

	return payload, nil
}
