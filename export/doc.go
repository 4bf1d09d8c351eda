// Package export converts composited sprites and packed atlases into formats
// other programs understand: animated GIFs, PNG data URLs, thumbnails and a
// YAML description of a spritesheet.
package export
