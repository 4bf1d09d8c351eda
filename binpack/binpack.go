// Package binpack places rectangles into bounded bins without overlap.
//
// Placement uses guillotine splitting: every bin starts as one free section,
// rectangles are placed largest first into the smallest free section that
// contains them, and the leftover of that section is split into two new
// sections. The result is "fits or fails"; no attempt is made to find the
// tightest possible layout.
package binpack

import (
	"fmt"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrNoFit is returned when at least one rectangle could not be placed.
var ErrNoFit = errors.New("binpack: rectangles do not fit into the target bins")

// Rect is a rectangle to be placed.
type Rect struct {
	W, H int
}

// Bin is a target area, anchored at 0,0.
type Bin struct {
	W, H int
}

// Placement says where a rectangle went.
type Placement struct {
	// Bin is the index of the bin in the slice passed to Pack.
	Bin  int
	X, Y int
	W, H int
}

// Right returns the exclusive right edge of the placement.
func (p Placement) Right() int { return p.X + p.W }

// Bottom returns the exclusive bottom edge of the placement.
func (p Placement) Bottom() int { return p.Y + p.H }

type section struct {
	x, y, w, h int
}

func (s section) contains(r Rect) bool {
	return r.W <= s.w && r.H <= s.h
}

func (s section) area() int {
	return s.w * s.h
}

// Pack places every rect into one of bins. The returned slice is parallel to
// rects. If any rect does not fit, Pack returns ErrNoFit and no placements.
func Pack(rects []Rect, bins []Bin) ([]Placement, error) {
	for i, r := range rects {
		if r.W < 0 || r.H < 0 {
			return nil, fmt.Errorf("binpack: rect %d has negative size %dx%d", i, r.W, r.H)
		}
	}

	free := make([][]section, len(bins))
	for i, b := range bins {
		if b.W > 0 && b.H > 0 {
			free[i] = []section{{0, 0, b.W, b.H}}
		}
	}

	// Largest area first; ties keep input order so results are repeatable.
	order := make([]int, len(rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rects[order[a]].W*rects[order[a]].H > rects[order[b]].W*rects[order[b]].H
	})

	placements := make([]Placement, len(rects))
	for _, ri := range order {
		r := rects[ri]
		if r.W == 0 || r.H == 0 {
			// Empty rectangles occupy nothing; anchor them at the origin
			// of the first bin they fit.
			placed := false
			for bi, b := range bins {
				if r.W <= b.W && r.H <= b.H {
					placements[ri] = Placement{Bin: bi, W: r.W, H: r.H}
					placed = true
					break
				}
			}
			if !placed {
				return nil, errors.Wrapf(ErrNoFit, "empty rect %d", ri)
			}
			continue
		}

		bestBin, bestSec := -1, -1
		for bi := range free {
			for si, s := range free[bi] {
				if !s.contains(r) {
					continue
				}
				if bestBin < 0 || s.area() < free[bestBin][bestSec].area() {
					bestBin, bestSec = bi, si
				}
			}
		}
		if bestBin < 0 {
			return nil, errors.Wrapf(ErrNoFit, "rect %d (%dx%d)", ri, r.W, r.H)
		}

		s := free[bestBin][bestSec]
		placements[ri] = Placement{Bin: bestBin, X: s.x, Y: s.y, W: r.W, H: r.H}
		free[bestBin] = append(free[bestBin][:bestSec], free[bestBin][bestSec+1:]...)
		free[bestBin] = append(free[bestBin], split(s, r)...)
		glog.V(3).Infof("binpack: rect %d (%dx%d) at bin %d %d,%d", ri, r.W, r.H, bestBin, s.x, s.y)
	}

	return placements, nil
}

// split divides what is left of s after placing r at its top left corner
// into at most two sections, choosing the cut that keeps the larger of the
// two leftovers as big as possible.
func split(s section, r Rect) []section {
	// Horizontal cut: right piece is as tall as r, bottom piece spans s.
	hRight := section{s.x + r.W, s.y, s.w - r.W, r.H}
	hBottom := section{s.x, s.y + r.H, s.w, s.h - r.H}
	// Vertical cut: right piece spans s, bottom piece is as wide as r.
	vRight := section{s.x + r.W, s.y, s.w - r.W, s.h}
	vBottom := section{s.x, s.y + r.H, r.W, s.h - r.H}

	a, b := hRight, hBottom
	if max(vRight.area(), vBottom.area()) > max(hRight.area(), hBottom.area()) {
		a, b = vRight, vBottom
	}

	var out []section
	for _, n := range []section{a, b} {
		if n.w > 0 && n.h > 0 {
			out = append(out, n)
		}
	}
	return out
}
