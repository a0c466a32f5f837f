// Package hotelcsv reads the hotel input list.
package hotelcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"hotelmap/internal/domain"
)

var ErrMissingColumn = errors.New("missing column")

// ReadFile opens path and reads every data row. See Read.
func ReadFile(path, encoding string) ([]domain.HotelQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Read(f, encoding)
}

// Read decodes r with the named encoding (any WHATWG label, e.g. utf-8, gbk,
// gb18030) and returns one query per data row, valid or not. A byte order mark
// overrides the label. The header must name a "name" and a "city" column;
// other columns are ignored. Empty input yields no rows.
func Read(r io.Reader, encoding string) ([]domain.HotelQuery, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("input encoding %q: %w", encoding, err)
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameCol, cityCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			if nameCol < 0 {
				nameCol = i
			}
		case "city":
			if cityCol < 0 {
				cityCol = i
			}
		}
	}
	if nameCol < 0 || cityCol < 0 {
		return nil, fmt.Errorf("%w: header must contain name and city, got %q", ErrMissingColumn, header)
	}

	var out []domain.HotelQuery
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		out = append(out, domain.HotelQuery{
			Row:  row,
			Name: field(rec, nameCol),
			City: field(rec, cityCol),
		})
	}
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
