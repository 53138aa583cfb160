package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
)

// The legacy textual layout keeps the HIF header but stores every pixel as a
// six digit hex colour ("ff8000"), with a newline before each new row. Files
// carry no marker telling the two layouts apart, so callers must pick the
// legacy functions explicitly.

// ErrBadColor reports a legacy pixel token that is not a hex colour.
var ErrBadColor = errors.New("hif: malformed colour literal")

const hexPixelLen = 2 * channels

// EncodeLegacy serialises img in the textual layout. Alpha is dropped.
func EncodeLegacy(img image.Image) ([]byte, error) {
	w, h, n, err := imageSize(img)
	if err != nil {
		return nil, err
	}
	pix := make([]byte, n)
	unpaintInto(pix, img)

	rowBytes := int(w) * channels
	var b bytes.Buffer
	b.Grow(headerSize + 2*n + int(h) - 1)
	b.Write(appendHeader(nil, w, h))

	line := make([]byte, 2*rowBytes)
	for y := 0; y < int(h); y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		hex.Encode(line, pix[y*rowBytes:(y+1)*rowBytes])
		b.Write(line)
	}
	return b.Bytes(), nil
}

// DecodeLegacy parses a buffer in the textual layout. Newlines are ignored;
// the remaining text must hold exactly width*height colour tokens. A single
// malformed token fails the whole decode.
func DecodeLegacy(data []byte) (Container, error) {
	w, h, err := DecodeHeader(data)
	if err != nil {
		return Container{}, err
	}
	text := bytes.ReplaceAll(data[headerSize:], []byte{'\n'}, nil)

	n, ok := streamLen(w, h)
	if !ok || len(text)/2 < n {
		return Container{}, fmt.Errorf("%w: %dx%d image, %d colour digits available", ErrTruncated, w, h, len(text))
	}
	if len(text) > 2*n {
		return Container{}, fmt.Errorf("%w: %d extra colour digits", ErrTrailingData, len(text)-2*n)
	}

	pix := make([]byte, n)
	for i := 0; i < n/channels; i++ {
		tok := text[i*hexPixelLen : (i+1)*hexPixelLen]
		if _, err := hex.Decode(pix[i*channels:(i+1)*channels], tok); err != nil {
			return Container{}, fmt.Errorf("%w: pixel %d %q", ErrBadColor, i, tok)
		}
	}
	return Container{Width: w, Height: h, Pix: pix}, nil
}
