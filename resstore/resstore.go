// Package resstore keeps packed spritesheets in a bbolt resource file.
//
// The file has three buckets: "atlases" maps an atlas name to its PNG image,
// "sprites" maps a sprite name to its packed description and the atlas it
// lives in, and "tags" maps a tag name to the sprites which have it.
package resstore

import (
	"bytes"
	"image"
	"image/png"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"

	"badc0de.net/pkg/go-pxo/atlas"
	"badc0de.net/pkg/go-pxo/export"
)

var (
	bucketAtlases = []byte("atlases")
	bucketSprites = []byte("sprites")
	bucketTags    = []byte("tags")
)

// ErrNotFound is returned when a requested resource is not in the file.
var ErrNotFound = errors.New("resstore: not found")

// Store is an open resource file.
type Store struct {
	db *bolt.DB
}

type spriteRecord struct {
	Atlas              string `yaml:"atlas"`
	export.SheetSprite `yaml:",inline"`
}

// Open opens or creates the resource file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0666, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "resstore: failed to open %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketAtlases, bucketSprites, bucketTags} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return errors.Wrapf(err, "resstore: failed to create bucket %s", b)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutAtlas stores a packed spritesheet under name, replacing any previous
// atlas of the same name. names are the sprite names, parallel to packed.
func (s *Store) PutAtlas(name string, names []string, packed []*atlas.PackedSprite, img image.Image) error {
	sh, err := export.NewSheet(names, packed, name, img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return errors.Wrap(err, "resstore: failed to encode atlas")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketAtlases).Put([]byte(name), buf.Bytes()); err != nil {
			return errors.Wrap(err, "resstore: failed to store atlas")
		}

		sprites := tx.Bucket(bucketSprites)
		tags := tx.Bucket(bucketTags)
		stale := map[string]bool{}
		for _, ss := range sh.Sprites {
			stale[ss.Name] = true
		}
		if err := sprites.ForEach(func(k, v []byte) error {
			rec := &spriteRecord{}
			if err := yaml.Unmarshal(v, rec); err != nil {
				return errors.Wrapf(err, "resstore: corrupt sprite %q", k)
			}
			if rec.Atlas == name {
				stale[string(k)] = true
			}
			return nil
		}); err != nil {
			return err
		}
		if err := dropSprites(sprites, tags, stale); err != nil {
			return err
		}

		for _, ss := range sh.Sprites {
			data, err := yaml.Marshal(&spriteRecord{Atlas: name, SheetSprite: ss})
			if err != nil {
				return errors.Wrapf(err, "resstore: failed to encode sprite %q", ss.Name)
			}
			if err := sprites.Put([]byte(ss.Name), data); err != nil {
				return errors.Wrapf(err, "resstore: failed to store sprite %q", ss.Name)
			}

			for _, t := range ss.Tags {
				if err := addTag(tags, t.Name, ss.Name); err != nil {
					return err
				}
			}
		}
		glog.V(2).Infof("resstore: stored atlas %q with %d sprites", name, len(sh.Sprites))
		return nil
	})
}

// dropSprites deletes the named sprites and takes them out of every tag. Tags
// left without sprites are deleted.
func dropSprites(sprites, tags *bolt.Bucket, names map[string]bool) error {
	// Buckets must not be modified from inside ForEach.
	for n := range names {
		if err := sprites.Delete([]byte(n)); err != nil {
			return errors.Wrapf(err, "resstore: failed to delete sprite %q", n)
		}
	}

	updated := map[string][]string{}
	err := tags.ForEach(func(k, v []byte) error {
		var members []string
		if err := yaml.Unmarshal(v, &members); err != nil {
			return errors.Wrapf(err, "resstore: corrupt tag %q", k)
		}
		kept := members[:0]
		for _, m := range members {
			if !names[m] {
				kept = append(kept, m)
			}
		}
		if len(kept) != len(members) {
			updated[string(k)] = kept
		}
		return nil
	})
	if err != nil {
		return err
	}

	for tag, members := range updated {
		if len(members) == 0 {
			if err := tags.Delete([]byte(tag)); err != nil {
				return errors.Wrapf(err, "resstore: failed to delete tag %q", tag)
			}
			continue
		}
		data, err := yaml.Marshal(members)
		if err != nil {
			return errors.Wrapf(err, "resstore: failed to encode tag %q", tag)
		}
		if err := tags.Put([]byte(tag), data); err != nil {
			return errors.Wrapf(err, "resstore: failed to store tag %q", tag)
		}
	}
	return nil
}

func addTag(b *bolt.Bucket, tag, sprite string) error {
	var names []string
	if data := b.Get([]byte(tag)); data != nil {
		if err := yaml.Unmarshal(data, &names); err != nil {
			return errors.Wrapf(err, "resstore: corrupt tag %q", tag)
		}
	}
	for _, n := range names {
		if n == sprite {
			return nil
		}
	}
	names = append(names, sprite)
	sort.Strings(names)

	data, err := yaml.Marshal(names)
	if err != nil {
		return errors.Wrapf(err, "resstore: failed to encode tag %q", tag)
	}
	return errors.Wrapf(b.Put([]byte(tag), data), "resstore: failed to store tag %q", tag)
}

// Atlas returns the spritesheet image stored under name.
func (s *Store) Atlas(name string) (image.Image, error) {
	var img image.Image
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAtlases).Get([]byte(name))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "atlas %q", name)
		}
		var err error
		img, err = png.Decode(bytes.NewReader(data))
		return errors.Wrapf(err, "resstore: failed to decode atlas %q", name)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Sprite returns the packed description of a sprite and the name of the
// atlas holding its frames.
func (s *Store) Sprite(name string) (*atlas.PackedSprite, string, error) {
	rec := &spriteRecord{}
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSprites).Get([]byte(name))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "sprite %q", name)
		}
		return errors.Wrapf(yaml.Unmarshal(data, rec), "resstore: corrupt sprite %q", name)
	})
	if err != nil {
		return nil, "", err
	}

	_, packed := (&export.Sheet{Sprites: []export.SheetSprite{rec.SheetSprite}}).Packed()
	return packed[0], rec.Atlas, nil
}

// Names returns the names of all stored atlases, sorted.
func (s *Store) Names() ([]string, error) {
	return s.keys(bucketAtlases)
}

// SpriteNames returns the names of all stored sprites, sorted.
func (s *Store) SpriteNames() ([]string, error) {
	return s.keys(bucketSprites)
}

func (s *Store) keys(bucket []byte) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// SpritesWithTag returns the sprites which have a tag named tag.
func (s *Store) SpritesWithTag(tag string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTags).Get([]byte(tag))
		if data == nil {
			return nil
		}
		return errors.Wrapf(yaml.Unmarshal(data, &names), "resstore: corrupt tag %q", tag)
	})
	return names, err
}
