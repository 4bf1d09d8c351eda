package pxo

import (
	"bytes"
	"image"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/gcpf"
)

// File is the closest representation of a .pxo file.
//
// A File is not modified by any package in this module once loaded.
type File struct {
	// Metadata from the JSON document.
	Metadata Metadata
	// Images holds one image for every Cel, indexed by Cel.ImageIndex.
	Images []*image.NRGBA
}

// Image returns the raw image of the passed cel, or nil if the file has no
// such image.
func (f *File) Image(c Cel) *image.NRGBA {
	if c.ImageIndex < 0 || c.ImageIndex >= len(f.Images) {
		return nil
	}
	return f.Images[c.ImageIndex]
}

// Options controls loading. The zero value is the default.
type Options struct {
	// Decompression options; nil means defaults.
	Decompression *gcpf.Options
}

// Load reads a whole .pxo file from r.
func Load(r io.Reader) (*File, error) {
	return LoadWithOptions(r, nil)
}

// LoadWithOptions is like Load, but allows configuring the decoder. A nil o
// means default options.
func LoadWithOptions(r io.Reader, o *Options) (*File, error) {
	if o == nil {
		o = &Options{}
	}

	m, rest, err := decode(r, o)
	if err != nil {
		return nil, err
	}

	images, err := ReadImages(m, rest)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("pxo: loaded %dx%d, %d frames, %d layers, %d images", m.Width, m.Height, len(m.Frames), len(m.Layers), len(images))

	return &File{Metadata: *m, Images: images}, nil
}

// LoadMetadata reads a .pxo file from r, but only parses the metadata.
func LoadMetadata(r io.Reader) (*Metadata, error) {
	m, _, err := decode(r, &Options{})
	return m, err
}

// decode decompresses the container and splits off the metadata line. The
// returned reader is positioned at the first raw image.
func decode(r io.Reader, o *Options) (*Metadata, *bytes.Reader, error) {
	payload, err := gcpf.DecompressWithOptions(r, o.Decompression)
	if err != nil {
		return nil, nil, err
	}

	// Like reading a line: without a newline, the whole payload is the line.
	line, rest := payload, []byte(nil)
	if i := bytes.IndexByte(payload, '\n'); i >= 0 {
		line, rest = payload[:i], payload[i+1:]
	}

	m, err := ParseMetadata(line)
	if err != nil {
		return nil, nil, errors.Wrap(err, "pxo: parsing metadata")
	}
	return m, bytes.NewReader(rest), nil
}
