package compositor

import (
	"image"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/pxo"
)

// newTransparent allocates a fully transparent image, failing instead of
// panicking on dimensions that cannot be allocated.
func newTransparent(w, h uint32) (*image.NRGBA, error) {
	if uint64(w)*uint64(h)*4 > math.MaxInt32 {
		return nil, errors.Wrapf(pxo.ErrSpriteConversion, "%dx%d image too large", w, h)
	}
	return image.NewNRGBA(image.Rect(0, 0, int(w), int(h))), nil
}

// compositeFrame paints the cels of frame idx onto a new transparent image,
// lowest layer first.
func compositeFrame(f *pxo.File, idx int, visible []bool, opts Options) (*image.NRGBA, error) {
	m := &f.Metadata
	frame := &m.Frames[idx]

	img, err := newTransparent(m.Width, m.Height)
	if err != nil {
		return nil, err
	}

	for layer, cel := range frame.Cels {
		use := opts.IgnoreLayerVisibility || (layer < len(visible) && visible[layer])
		if !use {
			glog.V(3).Infof("compositor: frame %d: skipping hidden layer %d", idx, layer)
			continue
		}

		alpha := float32(1)
		if !opts.IgnoreCelOpacity {
			alpha = cel.Opacity
		}

		src := f.Image(cel)
		if src == nil {
			return nil, errors.Wrapf(pxo.ErrSpriteConversion, "cel at layer %d refers to missing image %d", layer, cel.ImageIndex)
		}
		if src.Bounds().Size() != img.Bounds().Size() {
			return nil, errors.Wrapf(pxo.ErrSpriteConversion, "cel at layer %d is %v, want %v", layer, src.Bounds().Size(), img.Bounds().Size())
		}

		compositeCel(img, src, alpha)
	}

	return img, nil
}
