package main

import (
	"image"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-pxo/export"
	"badc0de.net/pkg/go-pxo/imageprint"
)

// fitBox returns the largest image, in pixels, that fits a terminal of the
// passed size. Modes drawing real pixels get half the window, leaving room
// for captions. The others take two columns per pixel and keep a row free.
func fitBox(cells, pixels image.Point, mode imageprint.Mode) (w, h uint, ok bool) {
	native := mode == imageprint.ModeRasTerm || mode == imageprint.ModeITerm
	if native && pixels.X > 0 && pixels.Y > 0 {
		return uint(pixels.X / 2), uint(pixels.Y / 2), true
	}
	if cells.X < 2 || cells.Y < 2 {
		return 0, 0, false
	}
	return uint(cells.X / 2), uint(cells.Y - 1), true
}

// fitTerminal returns a function shrinking images to the current terminal,
// or nil if the terminal size is unknown.
func fitTerminal(mode imageprint.Mode) func(image.Image) image.Image {
	cells, pixels, err := termSize()
	if err != nil {
		glog.Warningf("not downsizing: %v", err)
		return nil
	}
	w, h, ok := fitBox(cells, pixels, mode)
	if !ok {
		glog.Warningf("not downsizing: terminal is %v cells", cells)
		return nil
	}
	glog.V(1).Infof("downsizing to %dx%d", w, h)
	return func(img image.Image) image.Image {
		return export.Thumbnail(img, w, h)
	}
}
