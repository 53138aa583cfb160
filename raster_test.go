package main

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaint_RowMajor(t *testing.T) {
	pix := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	img, err := Paint(2, 2, pix)
	if err != nil {
		t.Fatal(err)
	}

	want := map[image.Point]color.RGBA{
		{0, 0}: {255, 0, 0, 255},
		{1, 0}: {0, 255, 0, 255},
		{0, 1}: {0, 0, 255, 255},
		{1, 1}: {255, 255, 255, 255},
	}
	for p, c := range want {
		if got := img.RGBAAt(p.X, p.Y); got != c {
			t.Errorf("pixel %v = %v, want %v", p, got, c)
		}
	}
}

func TestPaint_StreamLength(t *testing.T) {
	if _, err := Paint(2, 2, make([]byte, 11)); !errors.Is(err, ErrTruncated) {
		t.Errorf("short stream: error = %v, want ErrTruncated", err)
	}
	if _, err := Paint(2, 2, make([]byte, 13)); !errors.Is(err, ErrTrailingData) {
		t.Errorf("long stream: error = %v, want ErrTrailingData", err)
	}
	if _, err := Paint(0, 2, nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty: error = %v, want ErrEmptyImage", err)
	}
}

func setStripeMinPixels(t *testing.T, n int) {
	t.Helper()
	old := stripeMinPixels
	stripeMinPixels = n
	t.Cleanup(func() { stripeMinPixels = old })
}

func TestPaint_ParallelMatchesSerial(t *testing.T) {
	src := makeTestImage(123, 77)
	pix, err := Unpaint(src)
	if err != nil {
		t.Fatal(err)
	}

	setStripeMinPixels(t, math.MaxInt)
	serial, err := Paint(123, 77, pix)
	if err != nil {
		t.Fatal(err)
	}

	stripeMinPixels = 0
	parallel, err := Paint(123, 77, pix)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(serial.Pix, parallel.Pix); diff != "" {
		t.Errorf("parallel paint differs (-serial +parallel):\n%s", diff)
	}
	if diff := cmp.Diff(src.Pix, parallel.Pix); diff != "" {
		t.Errorf("paint differs from source (-want +got):\n%s", diff)
	}
}

func TestUnpaint_ParallelMatchesSerial(t *testing.T) {
	images := map[string]image.Image{
		"rgba":  makeTestImage(99, 45),
		"nrgba": toNRGBA(makeTestImage(99, 45)),
		"gray":  toGray(makeTestImage(99, 45)),
	}
	for name, img := range images {
		t.Run(name, func(t *testing.T) {
			setStripeMinPixels(t, math.MaxInt)
			serial, err := Unpaint(img)
			if err != nil {
				t.Fatal(err)
			}
			stripeMinPixels = 0
			parallel, err := Unpaint(img)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(serial, parallel); diff != "" {
				t.Errorf("parallel unpaint differs (-serial +parallel):\n%s", diff)
			}
		})
	}
}

func TestUnpaint_Premultiplied(t *testing.T) {
	want := color.NRGBA{R: 200, G: 100, B: 50, A: 0x80}
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, want)
	src.Set(1, 0, color.NRGBA{R: 9, G: 9, B: 9, A: 0})
	src.Set(2, 0, color.NRGBA{R: 7, G: 8, B: 9, A: 0xff})

	pix, err := Unpaint(src)
	if err != nil {
		t.Fatal(err)
	}

	var expect []byte
	for x := 0; x < 3; x++ {
		c := color.NRGBAModel.Convert(src.At(x, 0)).(color.NRGBA)
		expect = append(expect, c.R, c.G, c.B)
	}
	if diff := cmp.Diff(expect, pix); diff != "" {
		t.Errorf("stream differs from NRGBAModel (-want +got):\n%s", diff)
	}
}

func TestUnpaint_GenericImage(t *testing.T) {
	src := toGray(makeTestImage(5, 3))
	pix, err := Unpaint(src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 15; i++ {
		v := src.GrayAt(i%5, i/5).Y
		if got := pix[i*3 : i*3+3]; got[0] != v || got[1] != v || got[2] != v {
			t.Errorf("pixel %d = %v, want gray %d", i, got, v)
		}
	}
}

func TestPaintInto(t *testing.T) {
	pix, _ := Unpaint(quad())
	dst := image.NewNRGBA(image.Rect(10, 20, 13, 23))

	if err := PaintInto(dst, 2, 2, pix); err != nil {
		t.Fatal(err)
	}
	if got, want := dst.NRGBAAt(10, 20), (color.NRGBA{255, 0, 0, 255}); got != want {
		t.Errorf("(10,20) = %v, want %v", got, want)
	}
	if got, want := dst.NRGBAAt(11, 21), (color.NRGBA{255, 255, 255, 255}); got != want {
		t.Errorf("(11,21) = %v, want %v", got, want)
	}
	if got := dst.NRGBAAt(12, 22); got.A != 0 {
		t.Errorf("(12,22) painted: %v", got)
	}

	small := image.NewRGBA(image.Rect(0, 0, 1, 2))
	if err := PaintInto(small, 2, 2, pix); err == nil {
		t.Error("PaintInto accepted a surface that is too small")
	}
}

func toNRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}

func toGray(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}
