package pxo

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Metadata contains the information from the JSON document at the start of a
// .pxo payload.
type Metadata struct {
	// Width and Height are the dimensions of every image, in pixels.
	Width, Height uint32
	// FPS is used in conjunction with Frame.Duration.
	FPS float32
	// Frames in order. Each Frame holds one Cel per Layer.
	Frames []Frame
	// Layers in order; the first one is the lowest.
	Layers []Layer
	// Tags mark named animations.
	Tags []Tag
}

// Tag names an inclusive range of frames.
type Tag struct {
	Name     string
	From, To int
}

// Layer carries a layer's name and visibility. The cels for each layer are
// stored in Frames.
type Layer struct {
	Name    string
	Visible bool
}

// Frame is one time step of the animation.
type Frame struct {
	// Duration of the frame in seconds.
	Duration float32
	// Cels in the same order as Metadata.Layers.
	Cels []Cel
}

// Cel exists for every combination of layer and frame.
type Cel struct {
	// Opacity as set in Pixelorama. Not clamped.
	Opacity float32
	// ImageIndex is the index of the corresponding image in File.Images.
	ImageIndex int
}

// Cel returns the cel at the passed layer index, or false if the frame has no
// such cel.
func (f *Frame) Cel(layer int) (Cel, bool) {
	if layer < 0 || layer >= len(f.Cels) {
		return Cel{}, false
	}
	return f.Cels[layer], true
}

// CelCount returns the number of cels across all frames, which is also the
// number of raw images following the metadata.
func (m *Metadata) CelCount() int {
	n := 0
	for _, f := range m.Frames {
		n += len(f.Cels)
	}
	return n
}

// Layer returns the layer at the passed index, or false if there is none.
func (m *Metadata) Layer(i int) (Layer, bool) {
	if i < 0 || i >= len(m.Layers) {
		return Layer{}, false
	}
	return m.Layers[i], true
}

// ParseMetadata parses the metadata document. Any missing key or value of
// the wrong type fails the whole parse with ErrUnexpectedJSON.
//
// Cel image indices are not part of the document; they are assigned here in
// frame order, then cel order, which is the order raw images follow in.
func ParseMetadata(line []byte) (*Metadata, error) {
	if !utf8.Valid(line) {
		return nil, ErrReadUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "pxo: failed to read json")
	}
	// Trailing garbage on the line is malformed json as well.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("pxo: failed to read json: trailing data after metadata document")
	}

	root, err := expectObject(doc)
	if err != nil {
		return nil, err
	}

	m := &Metadata{}
	if m.Width, err = expectUint32(root, "size_x"); err != nil {
		return nil, err
	}
	if m.Height, err = expectUint32(root, "size_y"); err != nil {
		return nil, err
	}
	fps, err := expectFloat(root, "fps")
	if err != nil {
		return nil, err
	}
	m.FPS = float32(fps)

	frames, err := expectArray(root, "frames")
	if err != nil {
		return nil, err
	}
	imageIndex := 0
	for _, fv := range frames {
		fo, err := expectObject(fv)
		if err != nil {
			return nil, err
		}
		duration, err := expectFloat(fo, "duration")
		if err != nil {
			return nil, err
		}
		cels, err := expectArray(fo, "cels")
		if err != nil {
			return nil, err
		}

		frame := Frame{Duration: float32(duration), Cels: make([]Cel, 0, len(cels))}
		for _, cv := range cels {
			co, err := expectObject(cv)
			if err != nil {
				return nil, err
			}
			opacity, err := expectFloat(co, "opacity")
			if err != nil {
				return nil, err
			}
			frame.Cels = append(frame.Cels, Cel{Opacity: float32(opacity), ImageIndex: imageIndex})
			imageIndex++
		}
		m.Frames = append(m.Frames, frame)
	}

	layers, err := expectArray(root, "layers")
	if err != nil {
		return nil, err
	}
	for _, lv := range layers {
		lo, err := expectObject(lv)
		if err != nil {
			return nil, err
		}
		name, err := expectString(lo, "name")
		if err != nil {
			return nil, err
		}
		visible, err := expectBool(lo, "visible")
		if err != nil {
			return nil, err
		}
		m.Layers = append(m.Layers, Layer{Name: name, Visible: visible})
	}

	tags, err := expectArray(root, "tags")
	if err != nil {
		return nil, err
	}
	for _, tv := range tags {
		tobj, err := expectObject(tv)
		if err != nil {
			return nil, err
		}
		from, err := expectIndex(tobj, "from")
		if err != nil {
			return nil, err
		}
		until, err := expectIndex(tobj, "to")
		if err != nil {
			return nil, err
		}
		name, err := expectString(tobj, "name")
		if err != nil {
			return nil, err
		}
		m.Tags = append(m.Tags, Tag{Name: name, From: from, To: until})
	}

	return m, nil
}

// unexpected reports a schema mismatch. The error itself carries no detail
// about where in the document the mismatch is.
func unexpected(key, problem string) error {
	glog.V(2).Infof("pxo: metadata key %q %s", key, problem)
	return ErrUnexpectedJSON
}

func expectObject(v interface{}) (map[string]interface{}, error) {
	o, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrUnexpectedJSON
	}
	return o, nil
}

func expectKey(o map[string]interface{}, key string) (interface{}, error) {
	v, ok := o[key]
	if !ok {
		return nil, unexpected(key, "is missing")
	}
	return v, nil
}

func expectArray(o map[string]interface{}, key string) ([]interface{}, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]interface{})
	if !ok {
		return nil, unexpected(key, "is not an array")
	}
	return a, nil
}

// expectUint32 accepts only non-negative integer literals that fit 32 bits.
func expectUint32(o map[string]interface{}, key string) (uint32, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, unexpected(key, "is not a number")
	}
	u, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return 0, unexpected(key, "is not an unsigned integer")
	}
	return uint32(u), nil
}

// expectIndex accepts non-negative integer literals up to 64 bits, as long as
// they fit an int.
func expectIndex(o map[string]interface{}, key string) (int, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, unexpected(key, "is not a number")
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil || u > math.MaxInt {
		return 0, unexpected(key, "is not an index")
	}
	return int(u), nil
}

func expectFloat(o map[string]interface{}, key string) (float64, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, unexpected(key, "is not a number")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, unexpected(key, "is not a number")
	}
	return f, nil
}

func expectString(o map[string]interface{}, key string) (string, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", unexpected(key, "is not a string")
	}
	return s, nil
}

func expectBool(o map[string]interface{}, key string) (bool, error) {
	v, err := expectKey(o, key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, unexpected(key, "is not a bool")
	}
	return b, nil
}
