// Package imageprint prints sprite frames and spritesheets on a terminal.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"strings"

	"github.com/bradfitz/iter"
	"github.com/gookit/color"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
)

// Mode selects how pixels are put on the terminal.
type Mode int

const (
	// Mode24Bit changes the background with 24bit color escape sequences.
	Mode24Bit Mode = iota
	// Mode256 uses the closest xterm 256 color.
	Mode256
	// ModeNoColor uses no escape sequences at all. Only useful without blanks.
	ModeNoColor
	// ModeITerm sends the image as an inline PNG using iTerm2's escape sequence.
	ModeITerm
	// ModeRasTerm lets rasterm pick kitty, iTerm or sixel output.
	ModeRasTerm
)

var modeNames = map[string]Mode{
	"24bit":   Mode24Bit,
	"256":     Mode256,
	"nocolor": ModeNoColor,
	"iterm":   ModeITerm,
	"rasterm": ModeRasTerm,
}

// ParseMode maps a flag value onto a Mode.
func ParseMode(s string) (Mode, error) {
	m, ok := modeNames[strings.ToLower(s)]
	if !ok {
		return 0, errors.Errorf("imageprint: unknown mode %q", s)
	}
	return m, nil
}

// Printer writes images to W.
type Printer struct {
	W    io.Writer
	Mode Mode
	// Blanks prints colored spaces instead of brightness characters.
	Blanks bool
	// Fit, if set, is applied to every image before it is drawn. Sizes
	// printed in captions are those of the original image.
	Fit func(image.Image) image.Image
}

// Print draws a single image. name is only used by modes that transfer a
// file to the terminal.
func (p *Printer) Print(i image.Image, name string) error {
	if p.Fit != nil {
		i = p.Fit(i)
	}
	switch p.Mode {
	case ModeITerm:
		return p.printITerm(i, name)
	case ModeRasTerm:
		return printRasTerm(p.W, i)
	}

	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.shade(i.At(x, y))
		}
		if p.Mode != ModeNoColor {
			fmt.Fprint(p.W, "\x1b[0m")
		}
		fmt.Fprint(p.W, "\n")
	}
	return nil
}

func (p *Printer) shade(col ic.Color) {
	c := ic.NRGBAModel.Convert(col).(ic.NRGBA)
	if c.A == 0 {
		if p.Mode == ModeNoColor {
			fmt.Fprint(p.W, "  ")
		} else {
			fmt.Fprint(p.W, "\x1b[0m  ")
		}
		return
	}

	text := "  "
	if !p.Blanks {
		switch a := (int(c.R) + int(c.G) + int(c.B)) / 3; {
		case a < 32:
			text = ".."
		case a < 64:
			text = "--"
		case a < 128:
			text = "=="
		default:
			text = "##"
		}
	}

	switch p.Mode {
	case ModeNoColor:
		fmt.Fprint(p.W, text)
	case Mode256:
		fmt.Fprint(p.W, color.RGB(c.R, c.G, c.B, true).Sprint(text))
	default:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, text)
	}
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return errors.Wrap(err, "imageprint: failed to encode png")
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}

// PrintFrames draws the listed frames of s, each preceded by a caption. A nil
// list draws every frame. Frames outside the sprite are skipped.
func (p *Printer) PrintFrames(s *compositor.Sprite, name string, frames []int) error {
	if frames == nil {
		for i := range iter.N(s.FrameCount()) {
			frames = append(frames, i)
		}
	}
	for _, i := range frames {
		if i < 0 || i >= s.FrameCount() {
			continue
		}
		fmt.Fprintf(p.W, "%s frame %d/%d (%v)\n", name, i+1, s.FrameCount(), s.FrameDuration(i))
		if err := p.Print(s.Images[i], fmt.Sprintf("%s-%d.png", name, i)); err != nil {
			return errors.Wrapf(err, "imageprint: frame %d", i)
		}
	}
	return nil
}

// PrintAtlas draws a packed spritesheet followed by where each frame landed.
func (p *Printer) PrintAtlas(names []string, packed []*atlas.PackedSprite, img image.Image) error {
	if err := p.Print(img, "atlas.png"); err != nil {
		return err
	}
	fmt.Fprintf(p.W, "atlas %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())
	for si, ps := range packed {
		name := fmt.Sprintf("#%d", si)
		if si < len(names) {
			name = names[si]
		}
		fmt.Fprintf(p.W, "%s: %dx%d, %d frames, %g fps\n", name, ps.Width, ps.Height, len(ps.Frames), ps.FPS)
		for fi := range ps.Frames {
			fmt.Fprintf(p.W, "  %d: %v\n", fi, ps.Bounds(fi))
		}
	}
	return nil
}
