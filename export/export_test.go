package export

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/pxo"
	"badc0de.net/pkg/go-pxo/ttesting"
)

func nrgba(w, h int, pix []byte) *image.NRGBA {
	return &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

func testSprite() *compositor.Sprite {
	half := ttesting.Solid(4, 2, 255, 0, 0, 255)
	// Right half transparent.
	for y := 0; y < 2; y++ {
		for x := 2; x < 4; x++ {
			copy(half[(y*4+x)*4:], []byte{0, 0, 0, 0})
		}
	}
	return &compositor.Sprite{
		Width:     4,
		Height:    2,
		FPS:       5,
		Durations: []float32{0.5, 0, 0.04},
		Images: []*image.NRGBA{
			nrgba(4, 2, half),
			nrgba(4, 2, ttesting.Solid(4, 2, 0, 0, 255, 255)),
			nrgba(4, 2, ttesting.Gradient(4, 2, 3)),
		},
	}
}

func TestGIF(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := GIF(buf, testSprite()); err != nil {
		t.Fatalf("failed to write gif: %v", err)
	}

	g, err := gif.DecodeAll(buf)
	if err != nil {
		t.Fatalf("failed to decode gif: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(g.Image), 3)
	ttesting.AssertEqualInt(t, "width", g.Config.Width, 4)
	ttesting.AssertEqualInt(t, "height", g.Config.Height, 2)

	// 0.5s, 1/5 fps fallback, 0.04s.
	for i, want := range []int{50, 20, 4} {
		ttesting.AssertEqualInt(t, "delay", g.Delay[i], want)
	}

	if _, _, _, a := g.Image[0].At(3, 1).RGBA(); a != 0 {
		t.Errorf("transparent pixel has alpha %d", a)
	}
	if got := color.NRGBAModel.Convert(g.Image[0].At(0, 0)).(color.NRGBA); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("opaque pixel: got %v; want red", got)
	}
}

func TestGIFNoFrames(t *testing.T) {
	if err := GIF(&bytes.Buffer{}, &compositor.Sprite{Width: 1, Height: 1}); err == nil {
		t.Errorf("got no error for empty sprite")
	}
}

func TestThumbnail(t *testing.T) {
	img := nrgba(40, 20, ttesting.Gradient(40, 20, 9))

	th := Thumbnail(img, 10, 10)
	ttesting.AssertEqualInt(t, "width", th.Bounds().Dx(), 10)
	ttesting.AssertEqualInt(t, "height", th.Bounds().Dy(), 5)

	small := Thumbnail(img, 100, 100)
	ttesting.AssertEqualInt(t, "unscaled width", small.Bounds().Dx(), 40)
}

func TestDataURL(t *testing.T) {
	img := nrgba(3, 3, ttesting.Gradient(3, 3, 1))

	s, err := DataURL(img)
	if err != nil {
		t.Fatalf("failed to build data url: %v", err)
	}
	if !strings.HasPrefix(s, "data:image/png") {
		t.Errorf("got %q; want a png data url", s[:min(len(s), 30)])
	}

	du, err := dataurl.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode data url: %v", err)
	}
	back, err := png.Decode(bytes.NewReader(du.Data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	got, ok := back.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T; want *image.NRGBA", back)
	}
	ttesting.AssertImageEqual(t, "decoded", got, img)
}

func TestSheetYAML(t *testing.T) {
	packed := []*atlas.PackedSprite{
		{
			Width: 2, Height: 3, FPS: 12,
			Tags:   []pxo.Tag{{Name: "idle", From: 0, To: 1}},
			Frames: []atlas.PackedFrame{{Duration: 0.5, XOffset: 0, YOffset: 0}, {Duration: 1, XOffset: 2, YOffset: 0}},
		},
		{
			Width: 1, Height: 1, FPS: 1,
			Frames: []atlas.PackedFrame{{Duration: 1, XOffset: 4, YOffset: 0}},
		},
	}

	sh, err := NewSheet([]string{"hero", "dot"}, packed, "sheet.png", 5, 3)
	if err != nil {
		t.Fatalf("failed to describe sheet: %v", err)
	}
	buf := &bytes.Buffer{}
	if err := WriteSheetYAML(buf, sh); err != nil {
		t.Fatalf("failed to write sheet: %v", err)
	}
	if !strings.Contains(buf.String(), "name: hero") {
		t.Errorf("sheet yaml lacks sprite name:\n%s", buf.String())
	}

	read, err := ReadSheetYAML(buf)
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	ttesting.AssertEqualString(t, "image", read.Image, "sheet.png")
	ttesting.AssertEqualInt(t, "width", read.Width, 5)

	names, back := read.Packed()
	ttesting.AssertEqualString(t, "name", names[0], "hero")
	ttesting.AssertEqualInt(t, "sprites", len(back), 2)
	ttesting.AssertEqualString(t, "tag", back[0].Tags[0].Name, "idle")
	ttesting.AssertEqualInt(t, "frame x", back[0].Frames[1].XOffset, 2)
	ttesting.AssertEqualFloat32(t, "frame duration", back[0].Frames[0].Duration, 0.5)
	ttesting.AssertEqualFloat32(t, "fps", back[0].FPS, 12)

	if _, err := NewSheet([]string{"a"}, packed, "x.png", 1, 1); err == nil {
		t.Errorf("got no error for mismatched names")
	}
}
