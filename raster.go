package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Paint rebuilds an opaque RGBA surface of exactly width x height pixels from
// a row-major RGB stream. Pixel i lands at (i mod width, i div width).
func Paint(width, height uint32, pix []byte) (*image.RGBA, error) {
	if _, err := checkStream(width, height, len(pix)); err != nil {
		return nil, err
	}
	w, h := int(width), int(height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	forEachStripe(w, h, func(y0, y1 int) {
		paintRows(dst.Pix, dst.Stride, pix, w, y0, y1)
	})
	return dst, nil
}

func paintRows(dst []byte, stride int, pix []byte, w, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := dst[y*stride : y*stride+w*4]
		src := pix[y*w*channels : (y+1)*w*channels]
		for x := 0; x < w; x++ {
			d := row[x*4 : x*4+4 : x*4+4]
			s := src[x*channels : x*channels+channels : x*channels+channels]
			d[0] = s[0]
			d[1] = s[1]
			d[2] = s[2]
			d[3] = 0xff
		}
	}
}

// PaintInto paints the stream onto an arbitrary surface, starting at
// dst.Bounds().Min. Channels are handed over as color.RGBA, whose RGBA method
// scales each 8-bit value linearly to the 16-bit range (v*0x101, i.e. v/255
// of full scale); no gamma or colour-space conversion takes place.
func PaintInto(dst draw.Image, width, height uint32, pix []byte) error {
	if _, err := checkStream(width, height, len(pix)); err != nil {
		return err
	}
	b := dst.Bounds()
	w, h := int(width), int(height)
	if b.Dx() < w || b.Dy() < h {
		return fmt.Errorf("hif: surface %v too small for %dx%d image", b, w, h)
	}

	for i := 0; i < w*h; i++ {
		x, y := i%w, i/w
		p := pix[i*channels : i*channels+channels]
		dst.Set(b.Min.X+x, b.Min.Y+y, color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff})
	}
	return nil
}

// Unpaint returns the row-major R,G,B stream of img. Alpha is dropped:
// the straight (non-premultiplied) colour channels are kept as they are.
func Unpaint(img image.Image) ([]byte, error) {
	_, _, n, err := imageSize(img)
	if err != nil {
		return nil, err
	}
	pix := make([]byte, n)
	unpaintInto(pix, img)
	return pix, nil
}

// unpaintInto assumes len(dst) == Dx*Dy*3 for img.
func unpaintInto(dst []byte, img image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.NRGBA:
		forEachStripe(w, h, func(y0, y1 int) {
			unpaintNRGBARows(dst, src, w, y0, y1)
		})
	case *image.RGBA:
		forEachStripe(w, h, func(y0, y1 int) {
			unpaintRGBARows(dst, src, w, y0, y1)
		})
	default:
		forEachStripe(w, h, func(y0, y1 int) {
			unpaintImageRows(dst, img, b, y0, y1)
		})
	}
}

func unpaintNRGBARows(dst []byte, src *image.NRGBA, w, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		out := dst[y*w*channels : (y+1)*w*channels]
		for x := 0; x < w; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
}

// unpaintRGBARows un-premultiplies translucent pixels the same way color.NRGBAModel does.
func unpaintRGBARows(dst []byte, src *image.RGBA, w, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		out := dst[y*w*channels : (y+1)*w*channels]
		for x := 0; x < w; x++ {
			r, g, bl, a := row[x*4+0], row[x*4+1], row[x*4+2], row[x*4+3]
			switch a {
			case 0xff:
			case 0:
				r, g, bl = 0, 0, 0
			default:
				r = uint8((uint32(r) * 0xffff / uint32(a)) >> 8)
				g = uint8((uint32(g) * 0xffff / uint32(a)) >> 8)
				bl = uint8((uint32(bl) * 0xffff / uint32(a)) >> 8)
			}
			out[x*3+0] = r
			out[x*3+1] = g
			out[x*3+2] = bl
		}
	}
}

func unpaintImageRows(dst []byte, img image.Image, b image.Rectangle, y0, y1 int) {
	w := b.Dx()
	for y := y0; y < y1; y++ {
		out := dst[y*w*channels : (y+1)*w*channels]
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out[x*3+0] = c.R
			out[x*3+1] = c.G
			out[x*3+2] = c.B
		}
	}
}
