// Package pxo implements a reader for Pixelorama project files (.pxo).
//
// A .pxo file is a zstd block-compressed container (see package gcpf) whose
// payload starts with a line of JSON metadata, followed by raw RGBA8 pixel
// data for every cel. Load returns the closest representation of the file:
// the metadata plus one image per cel.
//
// Layers are not merged here. Package compositor turns a File into one image
// per frame, and package atlas packs those into a spritesheet.
package pxo
