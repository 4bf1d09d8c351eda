package compositor

// This file registers .pxo files with the image package, the same way the
// standard library decoders do.

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"badc0de.net/pkg/go-pxo/gcpf"
	"badc0de.net/pkg/go-pxo/pxo"
)

func init() {
	image.RegisterFormat("pxo", gcpf.Magic, Decode, DecodeConfig)
}

// Decode returns the first frame of a .pxo file, merged with default options.
func Decode(r io.Reader) (image.Image, error) {
	s, err := Load(r, Options{})
	if err != nil {
		return nil, err
	}
	if len(s.Images) == 0 {
		return nil, fmt.Errorf("compositor: pxo file has no frames")
	}
	return s.Images[0], nil
}

// DecodeConfig returns the dimensions shared by all frames of a .pxo file.
func DecodeConfig(r io.Reader) (image.Config, error) {
	m, err := pxo.LoadMetadata(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(m.Width),
		Height:     int(m.Height),
	}, nil
}
