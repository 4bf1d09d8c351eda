package pxo

import (
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/gcpf"
)

var (
	// ErrUnexpectedJSON is returned for any structural mismatch in the
	// metadata document: a missing key or a value of the wrong type.
	ErrUnexpectedJSON = errors.New("pxo: unexpected json value")
	// ErrReadUTF8 is returned when the metadata line is not valid UTF-8.
	ErrReadUTF8 = errors.New("pxo: failed to read utf8 bytes")
	// ErrReadImage is returned when raw cel data does not form an image of
	// the declared dimensions.
	ErrReadImage = errors.New("pxo: failed to read image")
	// ErrSpriteConversion is returned when a file cannot be merged down or
	// an output image cannot be allocated.
	ErrSpriteConversion = errors.New("pxo: failed to convert raw pxo to sprite")
	// ErrRectanglePack is returned when frames do not fit the atlas.
	ErrRectanglePack = errors.New("pxo: failed to pack sprite(s)")

	// ErrZeroBlockSize is gcpf.ErrZeroBlockSize.
	ErrZeroBlockSize = gcpf.ErrZeroBlockSize
)

type (
	// MagicError is gcpf.MagicError.
	MagicError = gcpf.MagicError
	// CompressionModeError is gcpf.CompressionModeError.
	CompressionModeError = gcpf.CompressionModeError
)
