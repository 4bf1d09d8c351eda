package atlas

import (
	"fmt"
	"image"
	"testing"

	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/pxo"
	"badc0de.net/pkg/go-pxo/ttesting"
)

func newSprite(w, h, frames int, seed uint8) *compositor.Sprite {
	s := &compositor.Sprite{
		Width:  uint32(w),
		Height: uint32(h),
		FPS:    10,
		Tags:   []pxo.Tag{{Name: fmt.Sprintf("tag%d", seed), From: 0, To: frames - 1}},
	}
	for i := 0; i < frames; i++ {
		s.Durations = append(s.Durations, float32(i+1)/10)
		s.Images = append(s.Images, &image.NRGBA{
			Pix:    ttesting.Gradient(w, h, seed+uint8(i)),
			Stride: w * 4,
			Rect:   image.Rect(0, 0, w, h),
		})
	}
	return s
}

func TestPackMany(t *testing.T) {
	sprites := []*compositor.Sprite{
		newSprite(16, 16, 3, 0),
		newSprite(8, 24, 2, 50),
		newSprite(5, 3, 4, 100),
	}
	const maxW, maxH = 64, 64

	packed, img, err := Pack(sprites, maxW, maxH)
	if err != nil {
		t.Fatalf("failed to pack: %v", err)
	}
	ttesting.AssertEqualInt(t, "packed sprite count", len(packed), 3)
	if img.Bounds().Dx() > maxW || img.Bounds().Dy() > maxH {
		t.Errorf("atlas %v larger than %dx%d", img.Bounds(), maxW, maxH)
	}

	for si, s := range sprites {
		p := packed[si]
		ttesting.AssertEqualUint32(t, fmt.Sprintf("sprite %d width", si), p.Width, s.Width)
		ttesting.AssertEqualUint32(t, fmt.Sprintf("sprite %d height", si), p.Height, s.Height)
		ttesting.AssertEqualFloat32(t, fmt.Sprintf("sprite %d fps", si), p.FPS, s.FPS)
		ttesting.AssertEqualInt(t, fmt.Sprintf("sprite %d frames", si), len(p.Frames), len(s.Images))
		ttesting.AssertEqualString(t, fmt.Sprintf("sprite %d tag", si), p.Tags[0].Name, s.Tags[0].Name)

		for fi, f := range p.Frames {
			name := fmt.Sprintf("sprite %d frame %d", si, fi)
			ttesting.AssertEqualFloat32(t, name+" duration", f.Duration, s.Durations[fi])
			if f.XOffset+int(p.Width) > img.Bounds().Dx() || f.YOffset+int(p.Height) > img.Bounds().Dy() {
				t.Errorf("%s at %d,%d exceeds atlas %v", name, f.XOffset, f.YOffset, img.Bounds())
			}

			sub := image.NewNRGBA(image.Rect(0, 0, int(p.Width), int(p.Height)))
			b := p.Bounds(fi)
			for y := 0; y < b.Dy(); y++ {
				for x := 0; x < b.Dx(); x++ {
					sub.SetNRGBA(x, y, img.NRGBAAt(b.Min.X+x, b.Min.Y+y))
				}
			}
			ttesting.AssertImageEqual(t, name+" pixels", sub, s.Images[fi])
		}
	}
}

func TestPackUsedArea(t *testing.T) {
	_, img, err := Pack([]*compositor.Sprite{newSprite(10, 10, 1, 0)}, 100, 100)
	if err != nil {
		t.Fatalf("failed to pack: %v", err)
	}
	ttesting.AssertEqualInt(t, "atlas width", img.Bounds().Dx(), 10)
	ttesting.AssertEqualInt(t, "atlas height", img.Bounds().Dy(), 10)
}

func TestPackOne(t *testing.T) {
	s := newSprite(4, 4, 4, 7)

	p, img, err := PackOne(s, 8, 8)
	if err != nil {
		t.Fatalf("failed to pack: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(p.Frames), 4)
	ttesting.AssertEqualInt(t, "atlas width", img.Bounds().Dx(), 8)
	ttesting.AssertEqualInt(t, "atlas height", img.Bounds().Dy(), 8)

	seen := map[image.Point]bool{}
	for _, f := range p.Frames {
		pt := image.Pt(f.XOffset, f.YOffset)
		if seen[pt] {
			t.Errorf("two frames at %v", pt)
		}
		seen[pt] = true
	}
}

func TestPackDoesNotFit(t *testing.T) {
	sprites := []*compositor.Sprite{
		newSprite(32, 32, 2, 0),
		newSprite(32, 32, 2, 1),
		newSprite(16, 16, 1, 2),
	}

	packed, img, err := Pack(sprites, 64, 64)
	if packed != nil || img != nil {
		t.Errorf("got %v, %v; want no results", packed, img)
	}
	ttesting.AssertErrorIs(t, "pack error", err, pxo.ErrRectanglePack)

	p, img, err := PackOne(newSprite(65, 1, 1, 0), 64, 64)
	if p != nil || img != nil {
		t.Errorf("got %v, %v; want no results", p, img)
	}
	ttesting.AssertErrorIs(t, "pack error", err, pxo.ErrRectanglePack)
}

func TestPackNoSprites(t *testing.T) {
	packed, img, err := Pack(nil, 64, 64)
	if err != nil {
		t.Fatalf("failed to pack nothing: %v", err)
	}
	ttesting.AssertEqualInt(t, "packed", len(packed), 0)
	ttesting.AssertEqualInt(t, "atlas width", img.Bounds().Dx(), 0)
}
