package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/storage/files"
)

// BrowserKeyPlaceholder marks where the browser-facing key goes in the template.
const BrowserKeyPlaceholder = "{{BROWSER_AK}}"

var (
	ErrMissingBrowserKey  = errors.New("browser key is empty")
	ErrPlaceholderMissing = errors.New("template has no " + BrowserKeyPlaceholder + " placeholder")
)

// RenderMap substitutes key for every placeholder in the template and writes
// the page to outputPath. Nothing is read or written when key is empty.
func RenderMap(templatePath, outputPath, key string) error {
	if key == "" {
		return ErrMissingBrowserKey
	}
	tpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	out, n, err := substituteKey(string(tpl), key)
	if err != nil {
		return fmt.Errorf("%s: %w", templatePath, err)
	}
	if err := files.WriteAtomic(outputPath, []byte(out)); err != nil {
		return err
	}
	log.Info().
		Str("template", templatePath).
		Str("output", outputPath).
		Int("replaced", n).
		Str("key", maskKey(key)).
		Msg("map rendered")
	return nil
}

func substituteKey(tpl, key string) (string, int, error) {
	n := strings.Count(tpl, BrowserKeyPlaceholder)
	if n == 0 {
		return "", 0, ErrPlaceholderMissing
	}
	return strings.ReplaceAll(tpl, BrowserKeyPlaceholder, key), n, nil
}

// maskKey keeps a recognisable prefix for logs.
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 20 {
		return string(r[:len(r)/2]) + "..."
	}
	return string(r[:20]) + "..."
}
