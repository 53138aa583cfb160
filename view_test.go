package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderANSI_Quad(t *testing.T) {
	var buf bytes.Buffer
	if err := renderANSI(&buf, quad(), 0, color.RGBA{}); err != nil {
		t.Fatal(err)
	}
	want := "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀" +
		"\x1b[38;2;0;255;0m\x1b[48;2;255;255;255m▀" +
		"\x1b[0m\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output differs (-want +got):\n%s", diff)
	}
}

func TestRenderANSI_OddHeight(t *testing.T) {
	img, err := Paint(1, 3, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderANSI(&buf, img, 0, color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}); err != nil {
		t.Fatal(err)
	}
	want := "\x1b[38;2;1;2;3m\x1b[48;2;4;5;6m▀\x1b[0m\n" +
		"\x1b[38;2;7;8;9m\x1b[48;2;32;32;32m▀\x1b[0m\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output differs (-want +got):\n%s", diff)
	}
}

func TestRenderANSI_Scaled(t *testing.T) {
	var buf bytes.Buffer
	if err := renderANSI(&buf, makeTestImage(80, 40), 20, color.RGBA{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, upperHalf); n != 20 {
			t.Errorf("line %d has %d cells, want 20", i, n)
		}
	}
}

func TestFitWidth(t *testing.T) {
	img := makeTestImage(10, 6)
	if got := fitWidth(img, 0); got != img {
		t.Error("fitWidth copied an image that already fits")
	}
	if got := fitWidth(img, 5).Bounds().Size(); got.X != 5 || got.Y != 3 {
		t.Errorf("scaled size = %v, want (5,3)", got)
	}
	if got := fitWidth(makeTestImage(100, 1), 10).Bounds().Dy(); got != 1 {
		t.Errorf("scaled height = %d, want 1", got)
	}
}
