package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/term"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, so one terminal cell shows two image rows.
const upperHalf = "▀"

// fitWidth scales img down to at most cols pixels wide, keeping the aspect ratio.
// Images that already fit are returned at their own size, copied only if
// they are not a zero-origin *image.RGBA.
func fitWidth(img image.Image, cols int) *image.RGBA {
	b := img.Bounds()
	if cols <= 0 || b.Dx() <= cols {
		if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
			return rgba
		}
		return ImageToRGBA(img)
	}
	h := max(b.Dy()*cols/b.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, cols, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// renderANSI paints img onto w using 24-bit colour escapes, at most cols
// cells wide. An odd last row is padded with bg.
func renderANSI(w io.Writer, img image.Image, cols int, bg color.RGBA) error {
	src := fitWidth(img, cols)
	b := src.Bounds()

	bw := bufio.NewWriter(w)
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := src.RGBAAt(x, y)
			bot := bg
			if y+1 < b.Max.Y {
				bot = src.RGBAAt(x, y+1)
			}
			fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s",
				top.R, top.G, top.B, bot.R, bot.G, bot.B, upperHalf)
		}
		bw.WriteString("\x1b[0m\n")
	}
	return bw.Flush()
}

// terminalColumns returns the width of the terminal behind f, limited to
// maxWidth when that is positive. When f is not a terminal maxWidth is used.
func terminalColumns(f *os.File, maxWidth int) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return maxWidth
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return maxWidth
	}
	if maxWidth > 0 {
		return min(cols, maxWidth)
	}
	return cols
}
