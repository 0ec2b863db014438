// util/resources.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

var resourcesFS fs.StatFS

func init() {
	resourcesFS = initResourcesFS()
}

// initResourcesFS finds the resources/ directory, preferring an explicit
// XSECT_RESOURCES override and otherwise looking next to the executable
// and then in the current directory (the latter for "go run" during
// development).
func initResourcesFS() fs.StatFS {
	if dir := os.Getenv("XSECT_RESOURCES"); dir != "" {
		return os.DirFS(dir).(fs.StatFS)
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "resources")
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return os.DirFS(dir).(fs.StatFS)
		}
	}

	return os.DirFS("resources").(fs.StatFS)
}

func GetResourcesFS() fs.StatFS {
	return resourcesFS
}

// Unfortunately, unlike io.ReadCloser, the zstd Decoder's Close() method
// doesn't return an error, so we need to make our own custom ReadCloser
// interface.
type ResourceReadCloser interface {
	io.Reader
	Close()
}

type bytesReadCloser struct {
	*bytes.Reader
}

func (bytesReadCloser) Close() {}

// LoadResource provides a ResourceReadCloser to access the specified file from
// the resources directory; if it's zstd compressed, the Reader will
// handle decompression transparently. It panics if the file is not found
// since missing resources are pretty much impossible to recover from.
func LoadResource(path string) ResourceReadCloser {
	f, err := fs.ReadFile(resourcesFS, path)
	if err != nil {
		panic(err)
	}
	br := bytesReadCloser{bytes.NewReader(f)}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(0))
		if err != nil {
			panic(err)
		}
		return zr
	}

	return br
}

func LoadResourceBytes(path string) []byte {
	r := LoadResource(path)
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	return b
}

// ResourceExists returns true if the specified resource file exists.
func ResourceExists(path string) bool {
	_, err := resourcesFS.Stat(path)
	return err == nil
}
