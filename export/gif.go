package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/bradfitz/iter"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/compositor"
)

// DefaultDelay is used, in 100ths of a second, for frames which have neither
// a duration nor a usable sprite FPS.
const DefaultDelay = 10

// GIF writes all frames of s as a looping animated GIF.
//
// Each frame gets its own palette of up to 255 colors plus a transparent
// entry at index 0.
func GIF(w io.Writer, s *compositor.Sprite) error {
	g := &gif.GIF{
		Config: image.Config{
			Width:  int(s.Width),
			Height: int(s.Height),
		},
		BackgroundIndex: 0,
	}

	for i := range iter.N(s.FrameCount()) {
		img := s.Images[i]
		g.Image = append(g.Image, paletted(img))
		g.Delay = append(g.Delay, delay(s, i))
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	if len(g.Image) == 0 {
		return errors.New("export: sprite has no frames")
	}

	glog.V(2).Infof("export: gif with %d frames, %dx%d", len(g.Image), s.Width, s.Height)
	if err := gif.EncodeAll(w, g); err != nil {
		return errors.Wrap(err, "export: failed to encode gif")
	}
	return nil
}

func paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	pal := color.Palette{color.Transparent}
	if !b.Empty() {
		q := quantize.MedianCutQuantizer{}
		pal = append(pal, q.Quantize(make(color.Palette, 0, 255), img)...)
	}

	// Transparent is the first color, so untouched pixels stay transparent.
	out := image.NewPaletted(b, pal)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// delay returns the GIF delay of frame i in 100ths of a second.
func delay(s *compositor.Sprite, i int) int {
	var seconds float64
	if i < len(s.Durations) {
		seconds = float64(s.Durations[i])
	}
	if seconds <= 0 && s.FPS > 0 {
		seconds = 1 / float64(s.FPS)
	}
	if seconds <= 0 {
		return DefaultDelay
	}
	return max(1, int(math.Round(seconds*100)))
}
