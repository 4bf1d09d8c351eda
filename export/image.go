package export

import (
	"bytes"
	"image"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
)

// Thumbnail scales img down to fit into maxWidth x maxHeight, preserving the
// aspect ratio. Images which already fit are returned unchanged. Pixel art
// is scaled with nearest neighbor interpolation.
func Thumbnail(img image.Image, maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.NearestNeighbor)
}

// DataURL encodes img as PNG and returns it as a data: URL.
func DataURL(img image.Image) (string, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return "", errors.Wrap(err, "export: failed to encode png")
	}

	dataURL := dataurl.New(buf.Bytes(), "image/png")
	byt, err := dataURL.MarshalText()
	if err != nil {
		return "", errors.Wrap(err, "export: failed to encode data url")
	}
	return string(byt), nil
}
