package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Algorithm names a stream compressor for the container wrapper.
type Algorithm string

const (
	Gzip Algorithm = "gzip"
	Zstd Algorithm = "zstd"
)

const defaultChunkSize = 32 << 10

var ErrUnknownAlgorithm = errors.New("hif: unknown compression algorithm")

// Ext returns the suffix appended to a compressed container name.
func (a Algorithm) Ext() string {
	switch a {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	}
	return ""
}

func (a Algorithm) valid() bool {
	return a.Ext() != ""
}

// algorithmForPath picks the algorithm from a compressed file name.
func algorithmForPath(path string) (Algorithm, bool) {
	for _, a := range []Algorithm{Gzip, Zstd} {
		if strings.HasSuffix(path, a.Ext()) {
			return a, true
		}
	}
	return "", false
}

// CompressOptions configures Compress. The zero value means gzip at the
// default level with 32 KiB chunks.
type CompressOptions struct {
	Algorithm Algorithm
	// Level is the compressor level; 0 selects the library default.
	Level int
	// ChunkSize is the read buffer size; 0 selects 32 KiB.
	ChunkSize int
}

func (o CompressOptions) algorithm() Algorithm {
	if o.Algorithm == "" {
		return Gzip
	}
	return o.Algorithm
}

func (o CompressOptions) chunkSize() int {
	if o.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return o.ChunkSize
}

func newCompressor(w io.Writer, o CompressOptions) (io.WriteCloser, error) {
	switch o.algorithm() {
	case Gzip:
		level := o.Level
		if level == 0 {
			level = gzip.DefaultCompression
		}
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		return zw, nil
	case Zstd:
		level := zstd.SpeedDefault
		if o.Level != 0 {
			level = zstd.EncoderLevelFromZstd(o.Level)
		}
		enc, err := zstd.NewWriter(
			w,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(level),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, o.Algorithm)
}

func newDecompressor(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(
			r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, a)
}

// copyChunks moves src to dst through buf, one buffer-sized read at a time.
func copyChunks(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return total, err
			}
			total += int64(n)
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

// Compress streams src through the configured compressor into dst and
// returns the number of uncompressed bytes read. The data is not inspected.
func Compress(dst io.Writer, src io.Reader, o CompressOptions) (int64, error) {
	zw, err := newCompressor(dst, o)
	if err != nil {
		return 0, err
	}
	n, err := copyChunks(zw, src, make([]byte, o.chunkSize()))
	if err != nil {
		zw.Close()
		return n, fmt.Errorf("%s compress: %w", o.algorithm(), err)
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("%s compress: %w", o.algorithm(), err)
	}
	return n, nil
}

// Decompress reverses Compress and returns the number of bytes written to dst.
func Decompress(dst io.Writer, src io.Reader, a Algorithm, chunkSize int) (int64, error) {
	zr, err := newDecompressor(src, a)
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	n, err := copyChunks(dst, zr, make([]byte, CompressOptions{ChunkSize: chunkSize}.chunkSize()))
	if err != nil {
		return n, fmt.Errorf("%s decompress: %w", a, err)
	}
	return n, nil
}

// CompressFile writes a compressed sibling of path (path + ".gz" or ".zst")
// and returns its name. On failure a partially written output may remain.
func CompressFile(path string, o CompressOptions) (string, error) {
	if !o.algorithm().valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, o.Algorithm)
	}
	outPath := path + o.algorithm().Ext()

	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if _, err := Compress(out, in, o); err != nil {
		out.Close()
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}

// DecompressFile restores the container a compressed sibling was made from.
// The algorithm is taken from the suffix, which is stripped for the output name.
func DecompressFile(path string, chunkSize int) (string, error) {
	a, ok := algorithmForPath(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, path)
	}
	outPath := strings.TrimSuffix(path, a.Ext())

	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if _, err := Decompress(out, in, a, chunkSize); err != nil {
		out.Close()
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}

// readContainerFile returns the raw container bytes stored at path,
// decompressing ".gz" and ".zst" files in memory.
func readContainerFile(path string) ([]byte, error) {
	a, ok := algorithmForPath(path)
	if !ok {
		return os.ReadFile(path)
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	zr, err := newDecompressor(in, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%s: %s decompress: %w", path, a, err)
	}
	return data, nil
}
