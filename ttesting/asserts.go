// Package ttesting contains helpers shared by tests across the module.
package ttesting

import (
	"image"
	"testing"

	"github.com/pkg/errors"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualUint32(t *testing.T, name string, got, want uint32) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualFloat32(t *testing.T, name string, got, want float32) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %g; want %g", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

// AssertErrorIs checks that err matches target anywhere in its chain.
func AssertErrorIs(t *testing.T, name string, err, target error) {
	t.Run(name, func(t *testing.T) {
		if !errors.Is(err, target) {
			t.Errorf("got error %v; want %v", err, target)
		}
	})
}

// AssertImageEqual compares the bounds and raw pixel bytes of two images.
func AssertImageEqual(t *testing.T, name string, got, want *image.NRGBA) {
	t.Run(name, func(t *testing.T) {
		if got == nil || want == nil {
			if got != want {
				t.Fatalf("got %v; want %v", got, want)
			}
			return
		}
		if got.Bounds() != want.Bounds() {
			t.Fatalf("got bounds %v; want %v", got.Bounds(), want.Bounds())
		}
		b := got.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if g, w := got.NRGBAAt(x, y), want.NRGBAAt(x, y); g != w {
					t.Fatalf("pixel %d,%d: got %v; want %v", x, y, g, w)
				}
			}
		}
	})
}
