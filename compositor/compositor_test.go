package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"badc0de.net/pkg/go-pxo/pxo"
	"badc0de.net/pkg/go-pxo/ttesting"
)

func loadFixture(t *testing.T, meta ttesting.Meta, cels ...[]byte) *pxo.File {
	t.Helper()
	data := ttesting.BuildContainer(ttesting.Payload(meta.JSON(), cels...), 256)
	f, err := pxo.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return f
}

func raw(w, h int, pix []byte) *image.NRGBA {
	return &image.NRGBA{Pix: append([]byte(nil), pix...), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

func TestSingleOpaqueLayer(t *testing.T) {
	const w, h = 6, 4
	cel := ttesting.Gradient(w, h, 77)
	f := loadFixture(t, ttesting.SimpleMeta(w, h, 1, 1), cel)

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "merged equals cel", s.Images[0], raw(w, h, cel))
}

func TestOnlyMiddleLayerVisible(t *testing.T) {
	const w, h = 4, 4
	layers := [][]byte{
		ttesting.Solid(w, h, 255, 0, 0, 255),
		ttesting.Gradient(w, h, 5),
		ttesting.Solid(w, h, 0, 0, 255, 255),
	}

	for _, order := range [][3]int{{0, 1, 2}, {2, 1, 0}, {0, 2, 1}, {1, 0, 2}} {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			meta := ttesting.SimpleMeta(w, h, 2, 3)
			visibleAt := -1
			var cels [][]byte
			for l, src := range order {
				meta.Layers[l].Visible = src == 1
				if src == 1 {
					visibleAt = l
				}
				cels = append(cels, layers[src])
			}
			// Two frames, same cels.
			f := loadFixture(t, meta, append(cels, cels...)...)

			s, err := FromFile(f, Options{})
			if err != nil {
				t.Fatalf("failed to composite: %v", err)
			}
			for i := range s.Images {
				ttesting.AssertImageEqual(t, fmt.Sprintf("frame %d equals visible layer %d alone", i, visibleAt), s.Images[i], raw(w, h, layers[1]))
			}
		})
	}
}

func TestVisibilityOfLaterLayers(t *testing.T) {
	// Layers 0 and 2 visible. The top layer must still be painted after the
	// bottom one was found visible.
	const w, h = 2, 2
	meta := ttesting.SimpleMeta(w, h, 1, 3)
	meta.Layers[1].Visible = false
	f := loadFixture(t, meta,
		ttesting.Solid(w, h, 10, 10, 10, 255),
		ttesting.Solid(w, h, 20, 20, 20, 255),
		ttesting.Solid(w, h, 30, 30, 30, 255))

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "top layer wins", s.Images[0], raw(w, h, ttesting.Solid(w, h, 30, 30, 30, 255)))
}

func TestIgnoreLayerVisibility(t *testing.T) {
	const w, h = 2, 2
	meta := ttesting.SimpleMeta(w, h, 1, 2)
	meta.Layers[0].Visible = false
	meta.Layers[1].Visible = false
	f := loadFixture(t, meta,
		ttesting.Solid(w, h, 1, 2, 3, 255),
		ttesting.Solid(w, h, 0, 0, 0, 0))

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "nothing visible", s.Images[0], image.NewNRGBA(image.Rect(0, 0, w, h)))

	s, err = FromFile(f, Options{IgnoreLayerVisibility: true})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "hidden layers painted", s.Images[0], raw(w, h, ttesting.Solid(w, h, 1, 2, 3, 255)))
}

func TestCelOpacity(t *testing.T) {
	const w, h = 3, 1
	meta := ttesting.SimpleMeta(w, h, 2, 2)
	meta.Frames[0].Cels[0].Opacity = 0.5
	meta.Frames[1].Cels[1].Opacity = 0.5
	f := loadFixture(t, meta,
		// Frame 0: half-transparent red over nothing.
		ttesting.Solid(w, h, 255, 0, 0, 255),
		ttesting.Solid(w, h, 0, 0, 0, 0),
		// Frame 1: half-transparent red over opaque blue.
		ttesting.Solid(w, h, 0, 0, 255, 255),
		ttesting.Solid(w, h, 255, 0, 0, 255))

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	if got, want := s.Images[0].NRGBAAt(1, 0), (color.NRGBA{255, 0, 0, 127}); got != want {
		t.Errorf("frame 0: got %v; want %v", got, want)
	}
	if got, want := s.Images[1].NRGBAAt(2, 0), (color.NRGBA{127, 0, 128, 255}); got != want {
		t.Errorf("frame 1: got %v; want %v", got, want)
	}

	s, err = FromFile(f, Options{IgnoreCelOpacity: true})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	if got, want := s.Images[1].NRGBAAt(0, 0), (color.NRGBA{255, 0, 0, 255}); got != want {
		t.Errorf("ignoring opacity: got %v; want %v", got, want)
	}
}

func TestBlendRounds(t *testing.T) {
	for _, tc := range []struct {
		name     string
		dst, src [4]uint8
		want     [4]uint8
	}{
		// Truncating would give 84 and 191.
		{"half over half", [4]uint8{0, 0, 255, 128}, [4]uint8{255, 0, 0, 128}, [4]uint8{170, 0, 85, 192}},
		{"over transparent", [4]uint8{9, 9, 9, 0}, [4]uint8{10, 20, 30, 77}, [4]uint8{10, 20, 30, 77}},
		{"opaque", [4]uint8{1, 2, 3, 200}, [4]uint8{10, 20, 30, 255}, [4]uint8{10, 20, 30, 255}},
		{"clear", [4]uint8{1, 2, 3, 200}, [4]uint8{10, 20, 30, 0}, [4]uint8{1, 2, 3, 200}},
	} {
		d := tc.dst
		blend(d[:], tc.src[0], tc.src[1], tc.src[2], tc.src[3])
		if d != tc.want {
			t.Errorf("%s: got %v; want %v", tc.name, d, tc.want)
		}
	}
}

func TestZeroOpacity(t *testing.T) {
	const w, h = 2, 2
	meta := ttesting.SimpleMeta(w, h, 1, 1)
	meta.Frames[0].Cels[0].Opacity = 0
	f := loadFixture(t, meta, ttesting.Solid(w, h, 9, 9, 9, 255))

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "transparent", s.Images[0], image.NewNRGBA(image.Rect(0, 0, w, h)))

	s, err = FromFile(f, Options{IgnoreCelOpacity: true})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertImageEqual(t, "opaque", s.Images[0], raw(w, h, ttesting.Solid(w, h, 9, 9, 9, 255)))
}

func TestSpriteFields(t *testing.T) {
	meta := ttesting.SimpleMeta(3, 7, 3, 1)
	meta.FPS = 24
	meta.Frames[1].Duration = 0.25
	meta.Tags = []ttesting.Tag{{Name: "run", From: 1, To: 5}, {Name: "jump", From: 0, To: 0}}
	var cels [][]byte
	for i := 0; i < 3; i++ {
		cels = append(cels, ttesting.Gradient(3, 7, uint8(i)))
	}
	f := loadFixture(t, meta, cels...)

	s, err := FromFile(f, Options{})
	if err != nil {
		t.Fatalf("failed to composite: %v", err)
	}
	ttesting.AssertEqualUint32(t, "width", s.Width, 3)
	ttesting.AssertEqualUint32(t, "height", s.Height, 7)
	ttesting.AssertEqualFloat32(t, "fps comes from fps", s.FPS, 24)
	ttesting.AssertEqualInt(t, "frames", s.FrameCount(), 3)
	ttesting.AssertEqualInt(t, "durations", len(s.Durations), 3)
	ttesting.AssertEqualFloat32(t, "frame 1 duration", s.Durations[1], 0.25)
	ttesting.AssertEqualInt(t, "tags", len(s.Tags), 2)
	if got := s.FrameDuration(1); got != 250*time.Millisecond {
		t.Errorf("got duration %v; want 250ms", got)
	}
	if got := s.TagFrames("run"); fmt.Sprint(got) != "[1 2]" {
		t.Errorf("run frames: got %v; want [1 2]", got)
	}
	if got := s.TagFrames("nope"); got != nil {
		t.Errorf("unknown tag: got %v; want nil", got)
	}

	// The sprite does not share pixels with the file.
	f.Images[0].Pix[0] ^= 0xff
	ttesting.AssertImageEqual(t, "independent of file", s.Images[0], raw(3, 7, cels[0]))
}

func TestMissingImage(t *testing.T) {
	f := &pxo.File{
		Metadata: pxo.Metadata{
			Width: 1, Height: 1,
			Frames: []pxo.Frame{{Duration: 1, Cels: []pxo.Cel{{Opacity: 1, ImageIndex: 3}}}},
			Layers: []pxo.Layer{{Name: "a", Visible: true}},
		},
	}
	_, err := FromFile(f, Options{})
	ttesting.AssertErrorIs(t, "conversion error", err, pxo.ErrSpriteConversion)
}

func TestImageDecode(t *testing.T) {
	const w, h = 5, 2
	cel := ttesting.Gradient(w, h, 1)
	data := ttesting.BuildContainer(ttesting.Payload(ttesting.SimpleMeta(w, h, 1, 1).JSON(), cel), 64)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	ttesting.AssertEqualString(t, "format", format, "pxo")
	ttesting.AssertEqualInt(t, "width", cfg.Width, w)
	ttesting.AssertEqualInt(t, "height", cfg.Height, h)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	ttesting.AssertImageEqual(t, "first frame", img.(*image.NRGBA), raw(w, h, cel))
}
