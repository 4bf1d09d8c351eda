// Package atlas packs the frames of one or more sprites into a single
// spritesheet image.
//
// The image is returned separately from the PackedSprite descriptions, since
// several sprites may share it.
package atlas

import (
	"image"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/binpack"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/pxo"
)

// PackedFrame describes where a frame's image lives in the spritesheet.
type PackedFrame struct {
	// Duration of the frame in seconds.
	Duration float32
	// XOffset and YOffset are the top left corner of the frame image.
	XOffset, YOffset int
}

// PackedSprite is a Sprite that has been packed, so it stores no image data.
type PackedSprite struct {
	Width, Height uint32
	FPS           float32
	Tags          []pxo.Tag
	// Frames in the same order as the sprite's frames.
	Frames []PackedFrame
}

// Bounds returns the rectangle of frame i within the spritesheet.
func (p *PackedSprite) Bounds(i int) image.Rectangle {
	f := p.Frames[i]
	return image.Rect(f.XOffset, f.YOffset, f.XOffset+int(p.Width), f.YOffset+int(p.Height))
}

// PackOne packs a single sprite.
func PackOne(s *compositor.Sprite, maxWidth, maxHeight int) (*PackedSprite, *image.NRGBA, error) {
	packed, img, err := Pack([]*compositor.Sprite{s}, maxWidth, maxHeight)
	if err != nil {
		return nil, nil, err
	}
	return packed[0], img, nil
}

type frameRef struct {
	sprite, frame int
}

// Pack places every frame of every sprite into one spritesheet no larger than
// maxWidth x maxHeight. The spritesheet is cropped to the area actually used.
//
// If the frames do not fit, an error matching pxo.ErrRectanglePack is
// returned, and neither descriptions nor an image.
func Pack(sprites []*compositor.Sprite, maxWidth, maxHeight int) ([]*PackedSprite, *image.NRGBA, error) {
	var refs []frameRef
	var rects []binpack.Rect
	for si, s := range sprites {
		if uint64(s.Width) > math.MaxInt32 || uint64(s.Height) > math.MaxInt32 {
			return nil, nil, errors.Wrapf(pxo.ErrRectanglePack, "sprite %d is %dx%d", si, s.Width, s.Height)
		}
		for fi := range s.Images {
			refs = append(refs, frameRef{si, fi})
			rects = append(rects, binpack.Rect{W: int(s.Width), H: int(s.Height)})
		}
	}

	placements, err := binpack.Pack(rects, []binpack.Bin{{W: maxWidth, H: maxHeight}})
	if err != nil {
		return nil, nil, errors.Wrapf(pxo.ErrRectanglePack, "%d frames into %dx%d: %v", len(rects), maxWidth, maxHeight, err)
	}

	width, height := 0, 0
	for _, p := range placements {
		if p.Right() > width {
			width = p.Right()
		}
		if p.Bottom() > height {
			height = p.Bottom()
		}
	}
	if uint64(width)*uint64(height)*4 > math.MaxInt32 {
		return nil, nil, errors.Wrapf(pxo.ErrSpriteConversion, "%dx%d spritesheet too large", width, height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	packed := make([]*PackedSprite, len(sprites))
	for si, s := range sprites {
		packed[si] = &PackedSprite{
			Width:  s.Width,
			Height: s.Height,
			FPS:    s.FPS,
			Frames: make([]PackedFrame, len(s.Images)),
		}
	}

	for i, ref := range refs {
		s := sprites[ref.sprite]
		p := placements[i]

		var duration float32
		if ref.frame < len(s.Durations) {
			duration = s.Durations[ref.frame]
		}
		packed[ref.sprite].Frames[ref.frame] = PackedFrame{
			Duration: duration,
			XOffset:  p.X,
			YOffset:  p.Y,
		}

		if err := blit(img, s.Images[ref.frame], image.Pt(p.X, p.Y)); err != nil {
			return nil, nil, errors.Wrapf(err, "atlas: sprite %d frame %d", ref.sprite, ref.frame)
		}
	}

	for si, s := range sprites {
		packed[si].Tags = append([]pxo.Tag(nil), s.Tags...)
	}
	glog.V(1).Infof("atlas: packed %d frames of %d sprites into %dx%d", len(refs), len(sprites), width, height)

	return packed, img, nil
}

// blit copies src into dst at pt without blending.
func blit(dst, src *image.NRGBA, pt image.Point) error {
	size := src.Bounds().Size()
	if !image.Rect(pt.X, pt.Y, pt.X+size.X, pt.Y+size.Y).In(dst.Bounds()) && size.X > 0 && size.Y > 0 {
		return errors.Wrapf(pxo.ErrSpriteConversion, "frame %v at %v outside %v", size, pt, dst.Bounds())
	}
	for y := 0; y < size.Y; y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := dst.PixOffset(pt.X, pt.Y+y)
		copy(dst.Pix[do:do+size.X*4], src.Pix[so:so+size.X*4])
	}
	return nil
}
