// Command pxopack packs the frames of .pxo sprites into one spritesheet. It
// writes the sheet as PNG, a YAML description of where every frame landed,
// and optionally stores both in a bbolt resource file.
package main

import (
	"flag"
	"image/png"
	"os"
	"path/filepath"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/export"
	"badc0de.net/pkg/go-pxo/paths"
	"badc0de.net/pkg/go-pxo/resstore"
)

var (
	spritesDir   = flag.String("sprites", "", "directory with .pxo files to pack, in addition to those given as arguments")
	outPNG       = flag.String("out", "./spritesheet.png", "spritesheet image to write")
	outYAML      = flag.String("out_meta", "./spritesheet.yml", "spritesheet description to write")
	resourceFile = flag.String("res", "", "resource file to store the spritesheet in; empty to skip")
	atlasName    = flag.String("name", "spritesheet", "name of the spritesheet in the resource file")
	maxWidth     = flag.Int("max_width", 2048, "maximum spritesheet width")
	maxHeight    = flag.Int("max_height", 2048, "maximum spritesheet height")

	ignoreVisibility = flag.Bool("ignore_visibility", false, "composite hidden layers too")
	ignoreOpacity    = flag.Bool("ignore_opacity", false, "composite cels at full opacity")
)

func load(name string) (*compositor.Sprite, error) {
	f, err := paths.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := compositor.Load(f, compositor.Options{
		IgnoreLayerVisibility: *ignoreVisibility,
		IgnoreCelOpacity:      *ignoreOpacity,
	})
	return s, errors.Wrapf(err, "loading %s", name)
}

func writeSheet(names []string, packed []*atlas.PackedSprite, w, h int) error {
	rel, err := filepath.Rel(filepath.Dir(*outYAML), *outPNG)
	if err != nil {
		rel = *outPNG
	}
	sh, err := export.NewSheet(names, packed, rel, w, h)
	if err != nil {
		return err
	}
	f, err := os.Create(*outYAML)
	if err != nil {
		return err
	}
	if err := export.WriteSheetYAML(f, sh); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	flagutil.Parse()

	inputs := flag.Args()
	if *spritesDir != "" {
		listed, err := paths.List(*spritesDir)
		if err != nil {
			glog.Exit(err)
		}
		inputs = append(inputs, listed...)
	}
	if len(inputs) == 0 {
		glog.Exit("no sprites to pack")
	}

	var names []string
	var sprites []*compositor.Sprite
	for _, in := range inputs {
		s, err := load(in)
		if err != nil {
			glog.Exit(err)
		}
		names = append(names, paths.Name(in))
		sprites = append(sprites, s)
	}

	packed, img, err := atlas.Pack(sprites, *maxWidth, *maxHeight)
	if err != nil {
		glog.Exitf("packing %d sprites into %dx%d: %v", len(sprites), *maxWidth, *maxHeight, err)
	}
	glog.Infof("packed %d sprites into %dx%d", len(sprites), img.Bounds().Dx(), img.Bounds().Dy())

	f, err := os.Create(*outPNG)
	if err != nil {
		glog.Exit(err)
	}
	if err := png.Encode(f, img); err != nil {
		glog.Exitf("writing %s: %v", *outPNG, err)
	}
	if err := f.Close(); err != nil {
		glog.Exit(err)
	}

	if err := writeSheet(names, packed, img.Bounds().Dx(), img.Bounds().Dy()); err != nil {
		glog.Exitf("writing %s: %v", *outYAML, err)
	}

	if *resourceFile == "" {
		return
	}
	st, err := resstore.Open(*resourceFile)
	if err != nil {
		glog.Exit(err)
	}
	defer st.Close()
	if err := st.PutAtlas(*atlasName, names, packed, img); err != nil {
		glog.Errorf("storing %s: %v", *atlasName, err)
	}
}
