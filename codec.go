// HIF is a headered raw RGB container. A file is an 8-byte header holding the
// image width and height as little-endian uint32 values, followed by exactly
// width*height R,G,B triplets in row-major order. There is no magic, version,
// checksum or alpha channel.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/bits"
	"slices"
)

const (
	// headerSize is the length of the width/height prefix.
	headerSize = 8
	// channels is the number of bytes stored per pixel (R, G, B).
	channels = 3

	hifExt = ".hif"
)

var (
	ErrShortHeader  = errors.New("hif: short header")
	ErrTruncated    = errors.New("hif: truncated pixel stream")
	ErrTrailingData = errors.New("hif: trailing data after pixel stream")
	ErrEmptyImage   = errors.New("hif: zero width or height")
	ErrTooLarge     = errors.New("hif: image dimensions too large")
)

// Container is a decoded HIF buffer. Pix holds Width*Height*3 bytes.
type Container struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// Image paints the pixel stream onto a new opaque RGBA surface.
func (c Container) Image() (*image.RGBA, error) {
	return Paint(c.Width, c.Height, c.Pix)
}

// streamLen returns width*height*3, or false if the product does not fit in an int.
func streamLen(width, height uint32) (int, bool) {
	hi, lo := bits.Mul64(uint64(width), uint64(height)*channels)
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// checkStream verifies that a pixel stream of got bytes matches the declared dimensions.
func checkStream(width, height uint32, got int) (int, error) {
	if width == 0 || height == 0 {
		return 0, ErrEmptyImage
	}
	n, ok := streamLen(width, height)
	if !ok || got < n {
		return 0, fmt.Errorf("%w: %dx%d image, %d bytes available", ErrTruncated, width, height, got)
	}
	if got > n {
		return 0, fmt.Errorf("%w: %d extra bytes", ErrTrailingData, got-n)
	}
	return n, nil
}

// imageSize returns the dimensions of img as header values.
func imageSize(img image.Image) (uint32, uint32, int, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, 0, 0, ErrEmptyImage
	}
	if uint64(b.Dx()) > math.MaxUint32 || uint64(b.Dy()) > math.MaxUint32 {
		return 0, 0, 0, ErrTooLarge
	}
	w, h := uint32(b.Dx()), uint32(b.Dy())
	n, ok := streamLen(w, h)
	if !ok || n > math.MaxInt-headerSize {
		return 0, 0, 0, ErrTooLarge
	}
	return w, h, n, nil
}

// Encoder keeps a scratch buffer between calls to Encode.
// An Encoder must not be used from several goroutines at once.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode serialises img into a HIF buffer of length 8 + width*height*3.
// Alpha is dropped. The returned slice is only valid until the next call.
func (e *Encoder) Encode(img image.Image) ([]byte, error) {
	w, h, n, err := imageSize(img)
	if err != nil {
		return nil, err
	}

	e.buf = slices.Grow(e.buf[:0], headerSize+n)[:headerSize+n]
	putHeader(e.buf, w, h)
	unpaintInto(e.buf[headerSize:], img)
	return e.buf, nil
}

// EncodeTo writes the HIF encoding of img to w.
func (e *Encoder) EncodeTo(w io.Writer, img image.Image) error {
	data, err := e.Encode(img)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode serialises img into a freshly allocated HIF buffer.
// The alpha channel of img, if any, is not stored.
func Encode(img image.Image) ([]byte, error) {
	return NewEncoder().Encode(img)
}

// EncodeTo writes the HIF encoding of img to w.
func EncodeTo(w io.Writer, img image.Image) error {
	return NewEncoder().EncodeTo(w, img)
}

// DecodeHeader reads the width and height from the first 8 bytes of data.
func DecodeHeader(data []byte) (width, height uint32, err error) {
	if len(data) < headerSize {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(data))
	}
	width, height = readHeader(data)
	if width == 0 || height == 0 {
		return 0, 0, ErrEmptyImage
	}
	return width, height, nil
}

// Decode parses a HIF buffer. The pixel stream must be exactly
// width*height*3 bytes long: short buffers fail with ErrTruncated and
// longer ones with ErrTrailingData. Pix aliases data.
func Decode(data []byte) (Container, error) {
	w, h, err := DecodeHeader(data)
	if err != nil {
		return Container{}, err
	}
	rest := data[headerSize:]
	n, err := checkStream(w, h, len(rest))
	if err != nil {
		return Container{}, err
	}
	return Container{Width: w, Height: h, Pix: rest[:n:n]}, nil
}

// DecodeFrom reads a whole HIF container from r.
func DecodeFrom(r io.Reader) (Container, error) {
	var hdr [headerSize]byte
	if n, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Container{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, n)
		}
		return Container{}, err
	}
	w, h, err := DecodeHeader(hdr[:])
	if err != nil {
		return Container{}, err
	}

	// Never trust the header for the allocation size; read at most one
	// byte beyond the declared stream so trailing data is still detected.
	limit := int64(math.MaxInt64)
	if n, ok := streamLen(w, h); ok {
		limit = int64(n) + 1
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, limit)); err != nil {
		return Container{}, err
	}
	n, err := checkStream(w, h, buf.Len())
	if err != nil {
		return Container{}, err
	}
	return Container{Width: w, Height: h, Pix: buf.Bytes()[:n:n]}, nil
}

// DecodeImage parses a HIF buffer and paints it onto a new RGBA surface.
func DecodeImage(data []byte) (*image.RGBA, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return c.Image()
}
