package main

import (
	"encoding/binary"
	"image"
	"image/draw"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// stripeMinPixels is the image area below which pixel loops stay on one goroutine.
var stripeMinPixels = 1 << 16

// ImageToRGBA copies any image.Image into an *image.RGBA with bounds starting at (0,0).
func ImageToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// putHeader writes width and height into the first 8 bytes of dst.
// The header is little-endian regardless of the host byte order.
func putHeader(dst []byte, width, height uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], width)
	binary.LittleEndian.PutUint32(dst[4:8], height)
}

// appendHeader appends the 8-byte header to dst.
func appendHeader(dst []byte, width, height uint32) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, width)
	return binary.LittleEndian.AppendUint32(dst, height)
}

// readHeader assumes len(src) >= headerSize.
func readHeader(src []byte) (width, height uint32) {
	return binary.LittleEndian.Uint32(src[0:4]), binary.LittleEndian.Uint32(src[4:8])
}

// forEachStripe calls fn for disjoint row ranges [y0, y1) covering [0, h).
// Large images are split across up to runtime.NumCPU() goroutines; fn must
// only touch the rows it is given.
func forEachStripe(w, h int, fn func(y0, y1 int)) {
	workers := max(min(runtime.NumCPU(), h), 1)
	if workers == 1 || w*h < stripeMinPixels {
		fn(0, h)
		return
	}

	rowsPerWorker := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += rowsPerWorker {
		y0 := y0 // per-iteration copy (go.mod targets Go 1.21 loop semantics)
		y1 := min(y0+rowsPerWorker, h)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(y0, y1)
		}()
	}
	wg.Wait()
}

// replaceExt swaps the extension of path for ext.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// containerPath maps a source image name like "cat.png" to "cat.hif".
func containerPath(src string) string {
	return replaceExt(src, hifExt)
}

// pngPath maps "cat.hif" to "cat.png".
func pngPath(src string) string {
	return replaceExt(src, ".png")
}
