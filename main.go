package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const usage = `Usage:
  hif compile [-legacy] [-o out.hif] <image>     convert PNG/JPEG/GIF/BMP/TIFF/WebP to .hif
  hif export [-legacy] [-o out.png] <file.hif>   convert .hif to PNG
  hif compress [-zstd] [-level n] <file.hif>     write file.hif.gz (or .hif.zst)
  hif decompress <file.hif.gz|file.hif.zst>      restore file.hif
  hif view [-legacy] [-width n] <file>           show a .hif (or compressed .hif) in the terminal
  hif info <file.hif>                            print dimensions
  hif <file>                                     view a .hif, compile anything else
Every command accepts -config <file.yml>.
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "hif: ", 0)

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	c, ok := commands[cmd]
	if !ok {
		// Bare path: .hif files are opened, everything else is compiled.
		rest = args
		cmd = "compile"
		if strings.EqualFold(filepath.Ext(args[0]), hifExt) || isCompressedContainer(args[0]) {
			cmd = "view"
		}
		c = commands[cmd]
	}

	err := c(rest, stdout, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(stderr, usage)
		return 2
	default:
		logger.Printf("%s: %v", cmd, err)
		return 1
	}
}

type command func(args []string, stdout, stderr io.Writer) error

var commands = map[string]command{
	"compile":    cmdCompile,
	"export":     cmdExport,
	"compress":   cmdCompress,
	"decompress": cmdDecompress,
	"view":       cmdView,
	"info":       cmdInfo,
}

// parseArgs parses fs and loads the config named by its -config flag.
// Exactly one positional path is required.
func parseArgs(fs *flag.FlagSet, args []string) (string, Config, error) {
	configPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return "", Config{}, err
	}
	if fs.NArg() != 1 {
		return "", Config{}, errUsage
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return "", Config{}, err
	}
	return fs.Arg(0), cfg, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func cmdCompile(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("compile", stderr)
	legacy := fs.Bool("legacy", false, "write the textual hex layout")
	out := fs.String("o", "", "output path (default: input with .hif extension)")
	inPath, _, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	outPath := *out
	if outPath == "" {
		outPath = containerPath(inPath)
	}
	if err := compileFile(inPath, outPath, *legacy); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Encoded %s → %s\n", inPath, outPath)
	return nil
}

func cmdExport(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("export", stderr)
	legacy := fs.Bool("legacy", false, "read the textual hex layout")
	out := fs.String("o", "", "output path (default: input with .png extension)")
	inPath, _, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	outPath := *out
	if outPath == "" {
		outPath = pngPath(strings.TrimSuffix(inPath, compressedExt(inPath)))
	}
	if err := exportFile(inPath, outPath, *legacy); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Decoded %s → %s\n", inPath, outPath)
	return nil
}

func cmdCompress(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("compress", stderr)
	useZstd := fs.Bool("zstd", false, "use zstd instead of the configured algorithm")
	level := fs.Int("level", 0, "compression level (0: config or library default)")
	inPath, cfg, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	opts := cfg.CompressOptions()
	if *useZstd {
		opts.Algorithm = Zstd
	}
	if *level != 0 {
		opts.Level = *level
	}
	outPath, err := CompressFile(inPath, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Compressed %s → %s\n", inPath, outPath)
	return nil
}

func cmdDecompress(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("decompress", stderr)
	inPath, cfg, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	outPath, err := DecompressFile(inPath, cfg.Compression.ChunkSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Decompressed %s → %s\n", inPath, outPath)
	return nil
}

func cmdView(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("view", stderr)
	legacy := fs.Bool("legacy", false, "read the textual hex layout")
	width := fs.Int("width", 0, "maximum width in terminal cells (0: config value)")
	inPath, cfg, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	maxWidth := cfg.View.MaxWidth
	if *width > 0 {
		maxWidth = *width
	}
	cols := maxWidth
	if f, ok := stdout.(*os.File); ok {
		cols = terminalColumns(f, maxWidth)
	}

	img, err := loadContainer(inPath, *legacy)
	if err != nil {
		return err
	}
	return renderANSI(stdout, img, cols, bg)
}

func cmdInfo(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("info", stderr)
	inPath, _, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	data, err := readContainerFile(inPath)
	if err != nil {
		return err
	}
	w, h, err := DecodeHeader(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	fmt.Fprintf(stdout, "%s: %dx%d, %d bytes\n", inPath, w, h, len(data))
	return nil
}

// compileFile converts the raster image at inPath into a container at outPath.
func compileFile(inPath, outPath string, legacy bool) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	var enc []byte
	if legacy {
		enc, err = EncodeLegacy(img)
	} else {
		enc, err = Encode(img)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	return writeFile(outPath, enc)
}

// exportFile converts the container at inPath into a PNG at outPath.
func exportFile(inPath, outPath string, legacy bool) error {
	img, err := loadContainer(inPath, legacy)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", outPath, err)
	}
	return out.Close()
}

// loadContainer reads, decodes and paints the container at path.
func loadContainer(path string, legacy bool) (*image.RGBA, error) {
	data, err := readContainerFile(path)
	if err != nil {
		return nil, err
	}
	var c Container
	if legacy {
		c, err = DecodeLegacy(data)
	} else {
		c, err = Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c.Image()
}

func writeFile(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// compressedExt returns the compression suffix of path, or "".
func compressedExt(path string) string {
	if a, ok := algorithmForPath(path); ok {
		return a.Ext()
	}
	return ""
}

func isCompressedContainer(path string) bool {
	ext := compressedExt(path)
	return ext != "" && strings.EqualFold(filepath.Ext(strings.TrimSuffix(path, ext)), hifExt)
}
