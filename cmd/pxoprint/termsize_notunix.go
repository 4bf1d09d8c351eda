//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package main

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// termSize reports the size of the terminal on stdin in cells. Pixel sizes
// are not known here.
func termSize() (cells, pixels image.Point, err error) {
	w, h, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return image.Point{}, image.Point{}, errors.Wrap(err, "pxoprint: no terminal size")
	}
	return image.Pt(w, h), image.Point{}, nil
}
