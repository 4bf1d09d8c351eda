// Package web serves composited sprites and a packed spritesheet over HTTP.
package web

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/export"
)

// generation is bumped if the way responses are generated changes.
const generation = 1

type spriteEntry struct {
	sprite    *compositor.Sprite
	signature uint32
}

type Handler struct {
	lock    sync.RWMutex
	sprites map[string]spriteEntry
	modTime time.Time

	atlasNames     []string
	atlasPacked    []*atlas.PackedSprite
	atlasImg       image.Image
	atlasSignature uint32
}

// NewHandler constructs an empty web handler. Sprites and the spritesheet
// are added with AddSprite and SetAtlas.
func NewHandler() *Handler {
	return &Handler{
		sprites: make(map[string]spriteEntry),
		modTime: time.Now(),
	}
}

func signature(imgs ...image.Image) uint32 {
	h := crc32.NewIEEE()
	for _, img := range imgs {
		switch i := img.(type) {
		case *image.NRGBA:
			h.Write(i.Pix)
		default:
			b := i.Bounds()
			fmt.Fprintf(h, "%v", b)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					r, g, bl, a := i.At(x, y).RGBA()
					h.Write([]byte{byte(r >> 8), byte(g >> 8), byte(bl >> 8), byte(a >> 8)})
				}
			}
		}
	}
	return h.Sum32()
}

// AddSprite makes s available under name, replacing any previous sprite with
// the same name.
func (h *Handler) AddSprite(name string, s *compositor.Sprite) {
	imgs := make([]image.Image, len(s.Images))
	for i, img := range s.Images {
		imgs[i] = img
	}
	sig := signature(imgs...)

	h.lock.Lock()
	defer h.lock.Unlock()
	h.sprites[name] = spriteEntry{sprite: s, signature: sig}
	h.modTime = time.Now()
}

// SetAtlas makes a packed spritesheet available. names are parallel to
// packed.
func (h *Handler) SetAtlas(names []string, packed []*atlas.PackedSprite, img image.Image) {
	sig := signature(img)

	h.lock.Lock()
	defer h.lock.Unlock()
	h.atlasNames = names
	h.atlasPacked = packed
	h.atlasImg = img
	h.atlasSignature = sig
	h.modTime = time.Now()
}

// notModified handles conditional requests. It returns true if the response
// was already written.
func (h *Handler) notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (h *Handler) ok(w http.ResponseWriter, mime, etag string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", h.modTime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) sprite(w http.ResponseWriter, r *http.Request) (string, spriteEntry, bool) {
	name := mux.Vars(r)["name"]
	h.lock.RLock()
	e, ok := h.sprites[name]
	h.lock.RUnlock()
	if !ok {
		http.Error(w, "no such sprite", http.StatusNotFound)
	}
	return name, e, ok
}

func (h *Handler) frameHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.frame", r.URL.Path)
	defer tr.Finish()

	name, e, ok := h.sprite(w, r)
	if !ok {
		return
	}
	fr, err := strconv.Atoi(mux.Vars(r)["frame"])
	if err != nil || fr < 0 || fr >= e.sprite.FrameCount() {
		http.Error(w, "bad frame", http.StatusNotFound)
		return
	}

	var tw, th int
	if v := r.URL.Query().Get("w"); v != "" {
		tw, _ = strconv.Atoi(v)
		// ignore invalid w
	}
	if v := r.URL.Query().Get("h"); v != "" {
		th, _ = strconv.Atoi(v)
		// ignore invalid h
	}

	mime := "image/png"
	etag := fmt.Sprintf(`W/"frame:%d:%08x:%s:%d:%dx%d:%s"`, generation, e.signature, name, fr, tw, th, mime)
	if h.notModified(w, r, etag) {
		return
	}

	var img image.Image = e.sprite.Images[fr]
	if tw > 0 && th > 0 {
		img = export.Thumbnail(img, uint(tw), uint(th))
	}
	tr.LazyPrintf("sprite %q frame %d", name, fr)

	h.ok(w, mime, etag)
	png.Encode(w, img)
}

func (h *Handler) gifHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.gif", r.URL.Path)
	defer tr.Finish()

	name, e, ok := h.sprite(w, r)
	if !ok {
		return
	}

	mime := "image/gif"
	etag := fmt.Sprintf(`W/"gif:%d:%08x:%s:%s"`, generation, e.signature, name, mime)
	if h.notModified(w, r, etag) {
		return
	}

	h.ok(w, mime, etag)
	if err := export.GIF(w, e.sprite); err != nil {
		tr.LazyPrintf("gif failed: %v", err)
		tr.SetError()
		glog.Errorf("web: gif of %q: %v", name, err)
	}
}

// SpriteInfo is the JSON description of a sprite.
type SpriteInfo struct {
	Name      string            `json:"name"`
	Width     uint32            `json:"width"`
	Height    uint32            `json:"height"`
	FPS       float32           `json:"fps"`
	Durations []float32         `json:"durations"`
	Tags      []export.SheetTag `json:"tags"`
}

func (h *Handler) infoHandler(w http.ResponseWriter, r *http.Request) {
	name, e, ok := h.sprite(w, r)
	if !ok {
		return
	}

	mime := "application/json"
	etag := fmt.Sprintf(`W/"info:%d:%08x:%s:%s"`, generation, e.signature, name, mime)
	if h.notModified(w, r, etag) {
		return
	}

	s := e.sprite
	info := SpriteInfo{
		Name:      name,
		Width:     s.Width,
		Height:    s.Height,
		FPS:       s.FPS,
		Durations: s.Durations,
	}
	for _, t := range s.Tags {
		info.Tags = append(info.Tags, export.SheetTag{Name: t.Name, From: t.From, To: t.To})
	}
	h.ok(w, mime, etag)
	json.NewEncoder(w).Encode(info)
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	h.lock.RLock()
	names := make([]string, 0, len(h.sprites))
	for n := range h.sprites {
		names = append(names, n)
	}
	h.lock.RUnlock()
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(names)
}

func (h *Handler) atlasState(w http.ResponseWriter) ([]string, []*atlas.PackedSprite, image.Image, uint32, bool) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.atlasImg == nil {
		http.Error(w, "no atlas", http.StatusNotFound)
		return nil, nil, nil, 0, false
	}
	return h.atlasNames, h.atlasPacked, h.atlasImg, h.atlasSignature, true
}

func (h *Handler) atlasPNGHandler(w http.ResponseWriter, r *http.Request) {
	_, _, img, sig, ok := h.atlasState(w)
	if !ok {
		return
	}

	mime := "image/png"
	etag := fmt.Sprintf(`W/"atlas:%d:%08x:%s"`, generation, sig, mime)
	if h.notModified(w, r, etag) {
		return
	}
	h.ok(w, mime, etag)
	png.Encode(w, img)
}

// AtlasInfo is the JSON description of the spritesheet. Image is a data:
// URL of the PNG image.
type AtlasInfo struct {
	Image  string               `json:"image"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Sheet  []export.SheetSprite `json:"sprites"`
}

func (h *Handler) atlasJSONHandler(w http.ResponseWriter, r *http.Request) {
	tr := trace.New("web.atlas", r.URL.Path)
	defer tr.Finish()

	names, packed, img, sig, ok := h.atlasState(w)
	if !ok {
		return
	}

	mime := "application/json"
	etag := fmt.Sprintf(`W/"atlas:%d:%08x:%s"`, generation, sig, mime)
	if h.notModified(w, r, etag) {
		return
	}

	du, err := export.DataURL(img)
	if err != nil {
		http.Error(w, "failed to encode atlas", http.StatusInternalServerError)
		glog.Errorf("web: atlas data url: %v", err)
		return
	}
	sh, err := export.NewSheet(names, packed, du, img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		http.Error(w, "failed to describe atlas", http.StatusInternalServerError)
		glog.Errorf("web: atlas sheet: %v", err)
		return
	}
	tr.LazyPrintf("%d sprites", len(sh.Sprites))

	h.ok(w, mime, etag)
	json.NewEncoder(w).Encode(AtlasInfo{Image: sh.Image, Width: sh.Width, Height: sh.Height, Sheet: sh.Sprites})
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sprites", h.indexHandler)
	r.HandleFunc("/sprite/{name}/{frame:[0-9]+}.png", h.frameHandler)
	r.HandleFunc("/sprite/{name}.gif", h.gifHandler)
	r.HandleFunc("/sprite/{name}.json", h.infoHandler)
	r.HandleFunc("/atlas.png", h.atlasPNGHandler)
	r.HandleFunc("/atlas.json", h.atlasJSONHandler)
}
