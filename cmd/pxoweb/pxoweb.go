// Command pxoweb serves .pxo sprites and a spritesheet packed from them over
// HTTP.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/compositor"
	"badc0de.net/pkg/go-pxo/paths"
	"badc0de.net/pkg/go-pxo/resstore"
	"badc0de.net/pkg/go-pxo/web"
)

var (
	listenAddress  = flag.String("listen_address", ":8080", "http listen address for pxoweb")
	debugWebServer = flag.String("debug_web_server_listen_address", "", "where the debug server will listen")
	spritesDir     = flag.String("sprites", ".", "directory with .pxo files to serve")
	resourceFile   = flag.String("res", "", "resource file with a packed spritesheet to serve instead of packing one")
	atlasName      = flag.String("name", "spritesheet", "name of the spritesheet in the resource file")
	maxWidth       = flag.Int("max_width", 2048, "maximum spritesheet width")
	maxHeight      = flag.Int("max_height", 2048, "maximum spritesheet height")
	allowedOrigin  = flag.String("allowed_origin", "*", "CORS allowed origin")
)

func loadSprites(h *web.Handler) ([]string, []*compositor.Sprite) {
	files, err := paths.List(*spritesDir)
	if err != nil {
		glog.Exit(err)
	}

	var names []string
	var sprites []*compositor.Sprite
	for _, fn := range files {
		f, err := os.Open(fn)
		if err != nil {
			glog.Errorf("opening %s: %v", fn, err)
			continue
		}
		s, err := compositor.Load(f, compositor.Options{})
		f.Close()
		if err != nil {
			glog.Errorf("loading %s: %v", fn, err)
			continue
		}
		name := paths.Name(fn)
		h.AddSprite(name, s)
		names = append(names, name)
		sprites = append(sprites, s)
	}
	glog.Infof("loaded %d sprites from %s", len(sprites), *spritesDir)
	return names, sprites
}

func loadAtlas(h *web.Handler) error {
	st, err := resstore.Open(*resourceFile)
	if err != nil {
		return err
	}
	defer st.Close()

	img, err := st.Atlas(*atlasName)
	if err != nil {
		return err
	}
	names, err := st.SpriteNames()
	if err != nil {
		return err
	}
	var inAtlas []string
	var packed []*atlas.PackedSprite
	for _, n := range names {
		p, a, err := st.Sprite(n)
		if err != nil {
			return err
		}
		if a != *atlasName {
			continue
		}
		inAtlas = append(inAtlas, n)
		packed = append(packed, p)
	}
	h.SetAtlas(inAtlas, packed, img)
	return nil
}

func main() {
	flagutil.Parse()

	h := web.NewHandler()
	names, sprites := loadSprites(h)

	if *resourceFile != "" {
		if err := loadAtlas(h); err != nil {
			glog.Exitf("loading atlas %q from %s: %v", *atlasName, *resourceFile, err)
		}
	} else if len(sprites) > 0 {
		packed, img, err := atlas.Pack(sprites, *maxWidth, *maxHeight)
		if err != nil {
			glog.Errorf("not serving an atlas: %v", err)
		} else {
			h.SetAtlas(names, packed, img)
		}
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	if *debugWebServer != "" {
		// x/net/trace registers /debug/requests on the default mux.
		http.HandleFunc("/debug/minimetrics", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "runtime.NumGoroutine(): %d\n", runtime.NumGoroutine())
		})
		go http.ListenAndServe(*debugWebServer, nil)
	}

	var handler http.Handler = r
	handler = handlers.CORS(handlers.AllowedOrigins([]string{*allowedOrigin}))(handler)
	handler = handlers.LoggingHandler(os.Stderr, handler)

	glog.Infof("pxoweb listening on %s", *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handler))
}
