// Package gcpf implements a reader for block-compressed resource containers
// as written by the Godot engine's compressed file access ("GCPF" framing).
//
// The container splits its payload into fixed-size blocks and compresses
// each of them separately. Only the zstd compression mode is supported,
// which is what Pixelorama uses for its .pxo project files.
package gcpf
