package ttesting

// This file builds compressed .pxo-style containers in memory, so that tests
// do not depend on datafiles.

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"github.com/klauspost/compress/zstd"
)

// Meta mirrors the JSON metadata document found on the first line of a
// decompressed container. Only the keys the readers care about are included.
type Meta struct {
	SizeX  uint32  `json:"size_x"`
	SizeY  uint32  `json:"size_y"`
	FPS    float64 `json:"fps"`
	Frames []Frame `json:"frames"`
	Layers []Layer `json:"layers"`
	Tags   []Tag   `json:"tags"`
}

type Frame struct {
	Duration float64 `json:"duration"`
	Cels     []Cel   `json:"cels"`
}

type Cel struct {
	Opacity float64 `json:"opacity"`
}

type Layer struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

type Tag struct {
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// JSON returns the metadata document, without the trailing newline.
func (m Meta) JSON() string {
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// SimpleMeta returns metadata with the passed number of frames and visible
// layers, every cel fully opaque, every frame lasting one second.
func SimpleMeta(w, h uint32, frames, layers int) Meta {
	m := Meta{SizeX: w, SizeY: h, FPS: 12, Frames: []Frame{}, Layers: []Layer{}, Tags: []Tag{}}
	for l := 0; l < layers; l++ {
		m.Layers = append(m.Layers, Layer{Name: "layer" + string(rune('A'+l)), Visible: true})
	}
	for f := 0; f < frames; f++ {
		fr := Frame{Duration: 1, Cels: []Cel{}}
		for l := 0; l < layers; l++ {
			fr.Cels = append(fr.Cels, Cel{Opacity: 1})
		}
		m.Frames = append(m.Frames, fr)
	}
	return m
}

// Solid returns raw RGBA8 pixel data for a w*h image of one color.
func Solid(w, h int, r, g, b, a uint8) []byte {
	pix := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		pix = append(pix, r, g, b, a)
	}
	return pix
}

// Gradient returns raw RGBA8 pixel data where every pixel differs, seeded
// so that different seeds give different images.
func Gradient(w, h int, seed uint8) []byte {
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix,
				uint8(x*17)^seed,
				uint8(y*31)+seed,
				uint8(x*7+y*11)^(seed*3),
				uint8(x*y+int(seed))|0x0F)
		}
	}
	return pix
}

// Payload concatenates the metadata line and the raw cel images the way the
// decompressed payload is laid out.
func Payload(metaJSON string, images ...[]byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(metaJSON)
	buf.WriteByte('\n')
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

// BuildContainer frames payload into a zstd-compressed GCPF container with
// the passed block size.
func BuildContainer(payload []byte, blockSize int) []byte {
	return BuildContainerHeader("GCPF", 2, blockSize, payload)
}

// BuildContainerHeader is like BuildContainer but allows writing an arbitrary
// magic and compression mode, for exercising error paths. blockSize must not
// be zero; use RawHeader for that.
func BuildContainerHeader(magic string, mode uint32, blockSize int, payload []byte) []byte {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	defer enc.Close()

	count := len(payload)/blockSize + 1
	compressed := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		start := i * blockSize
		end := start + blockSize
		if start > len(payload) {
			start = len(payload)
		}
		if end > len(payload) {
			end = len(payload)
		}
		compressed = append(compressed, enc.EncodeAll(payload[start:end], nil))
	}

	buf := RawHeader(magic, mode, uint32(blockSize), uint32(len(payload)))
	for _, c := range compressed {
		binary.Write(buf, binary.LittleEndian, uint32(len(c)))
	}
	for _, c := range compressed {
		buf.Write(c)
	}
	return buf.Bytes()
}

// RawHeader writes just the fixed part of a container header.
func RawHeader(magic string, mode, blockSize, totalSize uint32) *bytes.Buffer {
	buf := &bytes.Buffer{}
	buf.WriteString(magic)
	binary.Write(buf, binary.LittleEndian, mode)
	binary.Write(buf, binary.LittleEndian, blockSize)
	binary.Write(buf, binary.LittleEndian, totalSize)
	return buf
}
