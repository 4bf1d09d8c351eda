package export

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/pxo"
)

// Sheet describes a packed spritesheet, as read and written in YAML form.
type Sheet struct {
	Image   string        `yaml:"image" json:"image"`
	Width   int           `yaml:"width" json:"width"`
	Height  int           `yaml:"height" json:"height"`
	Sprites []SheetSprite `yaml:"sprites" json:"sprites"`
}

// SheetSprite is one packed sprite in a Sheet.
type SheetSprite struct {
	Name   string       `yaml:"name" json:"name"`
	Width  uint32       `yaml:"width" json:"width"`
	Height uint32       `yaml:"height" json:"height"`
	FPS    float32      `yaml:"fps" json:"fps"`
	Tags   []SheetTag   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Frames []SheetFrame `yaml:"frames" json:"frames"`
}

// SheetTag is a named, inclusive range of a sprite's frames.
type SheetTag struct {
	Name string `yaml:"name" json:"name"`
	From int    `yaml:"from" json:"from"`
	To   int    `yaml:"to" json:"to"`
}

// SheetFrame is where one frame sits in the spritesheet image, and how long
// it is shown for, in seconds.
type SheetFrame struct {
	X        int     `yaml:"x" json:"x"`
	Y        int     `yaml:"y" json:"y"`
	Duration float32 `yaml:"duration" json:"duration"`
}

// NewSheet describes packed, which were packed into an image of the passed
// size stored at imagePath. names must be parallel to packed.
func NewSheet(names []string, packed []*atlas.PackedSprite, imagePath string, width, height int) (*Sheet, error) {
	if len(names) != len(packed) {
		return nil, errors.Errorf("export: %d names for %d sprites", len(names), len(packed))
	}
	sh := &Sheet{
		Image:  imagePath,
		Width:  width,
		Height: height,
	}
	for i, p := range packed {
		ss := SheetSprite{
			Name:   names[i],
			Width:  p.Width,
			Height: p.Height,
			FPS:    p.FPS,
		}
		for _, t := range p.Tags {
			ss.Tags = append(ss.Tags, SheetTag{Name: t.Name, From: t.From, To: t.To})
		}
		for _, f := range p.Frames {
			ss.Frames = append(ss.Frames, SheetFrame{X: f.XOffset, Y: f.YOffset, Duration: f.Duration})
		}
		sh.Sprites = append(sh.Sprites, ss)
	}
	return sh, nil
}

// Packed converts the sheet back into packed sprite descriptions, together
// with their names.
func (sh *Sheet) Packed() ([]string, []*atlas.PackedSprite) {
	names := make([]string, 0, len(sh.Sprites))
	packed := make([]*atlas.PackedSprite, 0, len(sh.Sprites))
	for _, ss := range sh.Sprites {
		p := &atlas.PackedSprite{
			Width:  ss.Width,
			Height: ss.Height,
			FPS:    ss.FPS,
			Frames: make([]atlas.PackedFrame, 0, len(ss.Frames)),
		}
		for _, t := range ss.Tags {
			p.Tags = append(p.Tags, pxo.Tag{Name: t.Name, From: t.From, To: t.To})
		}
		for _, f := range ss.Frames {
			p.Frames = append(p.Frames, atlas.PackedFrame{XOffset: f.X, YOffset: f.Y, Duration: f.Duration})
		}
		names = append(names, ss.Name)
		packed = append(packed, p)
	}
	return names, packed
}

// WriteSheetYAML writes sh to w.
func WriteSheetYAML(w io.Writer, sh *Sheet) error {
	data, err := yaml.Marshal(sh)
	if err != nil {
		return errors.Wrap(err, "export: failed to marshal sheet")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "export: failed to write sheet")
	}
	return nil
}

// ReadSheetYAML parses a sheet written by WriteSheetYAML.
func ReadSheetYAML(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "export: failed to read sheet")
	}
	sh := &Sheet{}
	if err := yaml.Unmarshal(data, sh); err != nil {
		return nil, errors.Wrap(err, "export: failed to parse sheet")
	}
	return sh, nil
}
