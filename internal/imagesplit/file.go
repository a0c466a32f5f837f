package imagesplit

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	// extra input formats
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SplitFile splits the image at inputPath and writes <stem>_partNN<ext> files
// into outDir. It returns the written paths, or none when no split is needed.
func SplitFile(inputPath, outDir string, o Options) ([]string, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", inputPath, err)
	}
	b := img.Bounds()
	log.Info().Str("path", inputPath).Str("format", format).
		Int("width", b.Dx()).Int("height", b.Dy()).Msg("image loaded")

	parts := Plan(img, o)
	if parts == nil {
		log.Info().Int("height", b.Dy()).Int("max_height", o.MaxHeight).Msg("no need to split")
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), ext)
	enc := encoderFor(ext)
	if enc.ext != "" {
		ext = enc.ext
	}

	paths := make([]string, len(parts))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, r := range parts {
		paths[i] = filepath.Join(outDir, fmt.Sprintf("%s_part%02d%s", stem, i+1, ext))
		g.Go(func() error {
			if err := writePart(paths[i], img, r, enc); err != nil {
				return err
			}
			log.Info().Int("part", i+1).Int("y0", r.Min.Y-b.Min.Y).Int("y1", r.Max.Y-b.Min.Y).
				Int("height", r.Dy()).Str("path", paths[i]).Msg("part written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

type encoder struct {
	ext    string // replacement extension, "" keeps the input's
	encode func(f *os.File, img image.Image) error
}

func encoderFor(ext string) encoder {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return encoder{encode: func(f *os.File, img image.Image) error {
			return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
		}}
	case ".gif":
		return encoder{encode: func(f *os.File, img image.Image) error {
			return gif.Encode(f, img, nil)
		}}
	case ".png":
		return encoder{encode: func(f *os.File, img image.Image) error { return png.Encode(f, img) }}
	default:
		// webp/bmp/tiff are decode-only here
		return encoder{ext: ".png", encode: func(f *os.File, img image.Image) error { return png.Encode(f, img) }}
	}
}

func writePart(path string, src image.Image, r image.Rectangle, enc encoder) error {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc.encode(f, dst); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
