package pxo

import (
	"image"
	"io"
	"math"

	"github.com/pkg/errors"
)

// lenReader is implemented by in-memory readers such as *bytes.Reader.
type lenReader interface {
	Len() int
}

// ReadImages reads one raw RGBA8 image per cel from r, in the order cel image
// indices were assigned: frame by frame, then cel by cel.
//
// Pixel data is straight (not premultiplied) alpha, hence *image.NRGBA.
func ReadImages(m *Metadata, r io.Reader) ([]*image.NRGBA, error) {
	if m.CelCount() == 0 {
		return []*image.NRGBA{}, nil
	}
	size := uint64(m.Width) * uint64(m.Height) * 4
	if size > math.MaxInt32 {
		return nil, errors.Wrapf(ErrReadImage, "%dx%d image too large", m.Width, m.Height)
	}
	stride := int(m.Width) * 4

	images := make([]*image.NRGBA, 0, m.CelCount())
	for f, frame := range m.Frames {
		for c := range frame.Cels {
			if lr, ok := r.(lenReader); ok && lr.Len() < int(size) {
				return nil, errors.Wrapf(io.ErrUnexpectedEOF, "pxo: frame %d cel %d: %d bytes left, want %d", f, c, lr.Len(), size)
			}

			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, errors.Wrapf(err, "pxo: reading frame %d cel %d", f, c)
			}

			img, err := newRawImage(int(m.Width), int(m.Height), stride, data)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
	}
	return images, nil
}

// newRawImage wraps data without copying it.
func newRawImage(w, h, stride int, data []byte) (*image.NRGBA, error) {
	if len(data) != h*stride {
		return nil, errors.Wrapf(ErrReadImage, "got %d bytes for %dx%d", len(data), w, h)
	}
	return &image.NRGBA{
		Pix:    data,
		Stride: stride,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
