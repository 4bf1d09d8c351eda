// Command pxoprint prints the frames of .pxo sprites, or a spritesheet packed
// from them, on the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/gcpf"
	"badc0de.net/pkg/go-pxo/imageprint"
	"badc0de.net/pkg/go-pxo/paths"
	"badc0de.net/pkg/go-pxo/pxo"
)

var (
	mode      = flag.String("mode", "24bit", "output mode: 24bit, 256, nocolor, iterm or rasterm")
	blanks    = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize  = flag.Bool("downsize", true, "whether to shrink images to fit the terminal")
	frame     = flag.Int("frame", -1, "frame to print; -1 prints all of them")
	tag       = flag.String("tag", "", "only print frames of the named tag")
	banner    = flag.Bool("banner", false, "print a banner with the sprite name first")
	packAtlas = flag.Bool("atlas", false, "pack all sprites into one spritesheet and print that")
	maxWidth  = flag.Int("max_width", 1024, "maximum spritesheet width with -atlas")
	maxHeight = flag.Int("max_height", 1024, "maximum spritesheet height with -atlas")
	parallel  = flag.Bool("parallel", false, "decompress container blocks in parallel")

	ignoreVisibility = flag.Bool("ignore_visibility", false, "composite hidden layers too")
	ignoreOpacity    = flag.Bool("ignore_opacity", false, "composite cels at full opacity")
)

func load(name string) (*compositor.Sprite, error) {
	f, err := paths.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := pxo.LoadWithOptions(f, &pxo.Options{Decompression: &gcpf.Options{Parallel: *parallel}})
	if err != nil {
		return nil, err
	}
	return compositor.FromFile(file, compositor.Options{
		IgnoreLayerVisibility: *ignoreVisibility,
		IgnoreCelOpacity:      *ignoreOpacity,
	})
}

// frames picks the frames selected by -tag or -frame. nil means all of them.
func frames(s *compositor.Sprite) []int {
	if *tag != "" {
		if fs := s.TagFrames(*tag); fs != nil {
			return fs
		}
		return []int{}
	}
	if *frame >= 0 {
		return []int{*frame}
	}
	return nil
}

func main() {
	spritePath := paths.SpriteFlag(flag.CommandLine, "sprite_path", "sprite")
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	m, err := imageprint.ParseMode(*mode)
	if err != nil {
		glog.Exit(err)
	}
	p := &imageprint.Printer{W: os.Stdout, Mode: m, Blanks: *blanks}
	if m == imageprint.ModeNoColor {
		p.Blanks = false
	}
	if *downsize {
		p.Fit = fitTerminal(m)
	}

	names := flag.Args()
	if len(names) == 0 && *spritePath != "" {
		names = []string{*spritePath}
	}
	if len(names) == 0 {
		glog.Exit("no sprites given")
	}

	var sprites []*compositor.Sprite
	for _, name := range names {
		s, err := load(name)
		if err != nil {
			glog.Exitf("loading %s: %v", name, err)
		}
		glog.Infof("%s: %dx%d, %d frames, %g fps", name, s.Width, s.Height, s.FrameCount(), s.FPS)
		sprites = append(sprites, s)
	}

	if *packAtlas {
		packed, img, err := atlas.Pack(sprites, *maxWidth, *maxHeight)
		if err != nil {
			glog.Exitf("packing: %v", err)
		}
		if err := p.PrintAtlas(names, packed, img); err != nil {
			glog.Exit(err)
		}
		return
	}

	for si, s := range sprites {
		name := paths.Name(names[si])
		if *banner {
			fmt.Println(figure.NewFigure(name, "", true).String())
		}
		if err := p.PrintFrames(s, name, frames(s)); err != nil {
			glog.Errorf("printing %s: %v", name, err)
		}
	}
}
