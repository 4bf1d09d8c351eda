// Package compositor merges the layers of a .pxo file into a Sprite, with a
// single image per animation frame.
//
// Layers are painted bottom to top. Invisible layers are skipped and every
// cel's alpha is scaled by its opacity, unless Options say otherwise.
//
// Importing this package also registers the "pxo" format with the image
// package; image.Decode then returns the first merged frame.
package compositor

import (
	"image"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/pxo"
)

// Sprite is a simpler representation of a .pxo file, with layers merged down.
//
// A Sprite owns its images; it does not share pixel memory with the File it
// was created from.
type Sprite struct {
	// Width and Height of every frame image, in pixels.
	Width, Height uint32
	// FPS to use in conjunction with frame durations.
	FPS float32
	// Tags set in the .pxo, mostly used to mark animations.
	Tags []pxo.Tag
	// Durations of each frame in seconds; same length as Images.
	Durations []float32
	// Images holds one merged image per frame.
	Images []*image.NRGBA
}

// Options controls the way layers are merged. The zero value is the default.
type Options struct {
	// IgnoreLayerVisibility includes layers that are hidden in Pixelorama.
	IgnoreLayerVisibility bool
	// IgnoreCelOpacity paints every cel as if it were fully opaque.
	IgnoreCelOpacity bool
}

// Load reads a .pxo file from r and merges it into a Sprite.
func Load(r io.Reader, opts Options) (*Sprite, error) {
	f, err := pxo.Load(r)
	if err != nil {
		return nil, err
	}
	return FromFile(f, opts)
}

// FromFile merges every frame of f into a single image.
func FromFile(f *pxo.File, opts Options) (*Sprite, error) {
	m := &f.Metadata

	// Visibility does not change between frames, so the table is built once
	// and consulted independently for every cel.
	visible := make([]bool, len(m.Layers))
	for i, l := range m.Layers {
		visible[i] = l.Visible || opts.IgnoreLayerVisibility
	}

	s := &Sprite{
		Width:     m.Width,
		Height:    m.Height,
		FPS:       m.FPS,
		Tags:      append([]pxo.Tag(nil), m.Tags...),
		Durations: make([]float32, 0, len(m.Frames)),
		Images:    make([]*image.NRGBA, 0, len(m.Frames)),
	}

	for i := range m.Frames {
		img, err := compositeFrame(f, i, visible, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "compositor: frame %d", i)
		}
		s.Images = append(s.Images, img)
		s.Durations = append(s.Durations, m.Frames[i].Duration)
	}
	glog.V(2).Infof("compositor: merged %d frames of %d layers", len(s.Images), len(m.Layers))

	return s, nil
}

// FrameCount returns the number of frames.
func (s *Sprite) FrameCount() int {
	return len(s.Images)
}

// FrameDuration returns the duration of frame i.
func (s *Sprite) FrameDuration(i int) time.Duration {
	if i < 0 || i >= len(s.Durations) {
		return 0
	}
	return time.Duration(float64(s.Durations[i]) * float64(time.Second))
}

// Tag returns the tag with the passed name.
func (s *Sprite) Tag(name string) (pxo.Tag, bool) {
	for _, t := range s.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return pxo.Tag{}, false
}

// TagFrames returns the frame indices the named tag covers, clipped to the
// frames the sprite has. It returns nil for unknown tags.
func (s *Sprite) TagFrames(name string) []int {
	t, ok := s.Tag(name)
	if !ok {
		return nil
	}
	var frames []int
	for i := t.From; i <= t.To && i < len(s.Images); i++ {
		if i >= 0 {
			frames = append(frames, i)
		}
	}
	return frames
}
