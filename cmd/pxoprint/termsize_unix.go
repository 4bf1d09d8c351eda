//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"image"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

// termSize reports the size of the controlling terminal in cells and, when
// the terminal knows it, in pixels.
func termSize() (cells, pixels image.Point, err error) {
	if f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_RDWR, 0); err == nil {
		defer f.Close()
		ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			return image.Pt(int(ws.Col), int(ws.Row)), image.Pt(int(ws.Xpixel), int(ws.Ypixel)), nil
		}
		glog.V(2).Infof("pxoprint: TIOCGWINSZ on /dev/tty: %v", err)
	}

	w, h, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return image.Point{}, image.Point{}, errors.Wrap(err, "pxoprint: no terminal size")
	}
	return image.Pt(w, h), image.Point{}, nil
}
