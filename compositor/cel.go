package compositor

import (
	"image"
)

// compositeCel blends src over dst, pixel by pixel. Both images must have the
// same size.
//
// Both images hold straight (non-premultiplied) alpha. The source alpha is
// scaled by alpha first; colour channels are used as they are.
func compositeCel(dst, src *image.NRGBA, alpha float32) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	size := src.Bounds().Size()
	for y := 0; y < size.Y; y++ {
		so := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		for x := 0; x < size.X; x++ {
			s := src.Pix[so+x*4 : so+x*4+4 : so+x*4+4]
			d := dst.Pix[do+x*4 : do+x*4+4 : do+x*4+4]
			blend(d, s[0], s[1], s[2], uint8(alpha*float32(s[3])))
		}
	}
}

// blend paints one straight-alpha pixel over d. Channels are rounded to the
// nearest value rather than truncated, so a partly transparent pixel painted
// over a transparent one comes out unchanged.
func blend(d []uint8, r, g, b, a uint8) {
	switch {
	case a == 0:
		return
	case a == 0xff || d[3] == 0:
		// Nothing shows through, or nothing to show through.
		d[0], d[1], d[2], d[3] = r, g, b, a
		return
	}

	fa := float32(a) / 0xff
	ba := float32(d[3]) / 0xff
	outA := fa + ba*(1-fa)

	mix := func(fc, bc uint8) uint8 {
		c := (float32(fc)*fa + float32(bc)*ba*(1-fa)) / outA
		return uint8(c + 0.5)
	}
	d[0], d[1], d[2] = mix(r, d[0]), mix(g, d[1]), mix(b, d[2])
	d[3] = uint8(outA*0xff + 0.5)
}
