package paths

import (
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"badc0de.net/pkg/go-pxo/ttesting"
)

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hero.pxo"), []byte("GCPF"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.pxo"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, dir)

	ttesting.AssertEqualString(t, "with extension", Find("hero.pxo"), filepath.Join(dir, "hero.pxo"))
	ttesting.AssertEqualString(t, "without extension", Find("hero"), filepath.Join(dir, "hero.pxo"))
	ttesting.AssertEqualString(t, "directory", Find("dir.pxo"), "")
	ttesting.AssertEqualString(t, "missing", Find("villain"), "")

	f, err := Open("hero")
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	ttesting.AssertEqualString(t, "contents", string(data), "GCPF")

	_, err = Open("villain")
	ttesting.AssertErrorIs(t, "missing", err, os.ErrNotExist)

	list, err := List(dir)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	ttesting.AssertEqualInt(t, "listed", len(list), 1)
	ttesting.AssertEqualString(t, "name", Name(list[0]), "hero")
}

func TestOpenHTTP(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hero.pxo" {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Write([]byte("GCPF"))
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		f, err := Open(srv.URL + "/hero.pxo")
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		data, _ := io.ReadAll(f)
		f.Close()
		ttesting.AssertEqualString(t, "contents", string(data), "GCPF")
	}
	ttesting.AssertEqualInt(t, "fetches", hits, 1)

	_, err := Open(srv.URL + "/villain.pxo")
	ttesting.AssertErrorIs(t, "missing", err, os.ErrNotExist)
}

func TestSpriteFlag(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hero.pxo"), []byte("GCPF"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, dir)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	hero := SpriteFlag(fs, "hero_path", "hero")
	villain := SpriteFlag(fs, "villain_path", "villain")
	ttesting.AssertEqualString(t, "found default", *hero, filepath.Join(dir, "hero.pxo"))
	ttesting.AssertEqualString(t, "missing default", *villain, "")

	if usage := fs.Lookup("hero_path").Usage; !strings.Contains(usage, dir) || !strings.Contains(usage, Ext) {
		t.Errorf("usage %q does not mention %s or %s", usage, dir, Ext)
	}

	if err := fs.Parse([]string{"-villain_path=/tmp/villain.pxo"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	ttesting.AssertEqualString(t, "set", *villain, "/tmp/villain.pxo")
}
