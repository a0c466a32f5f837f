package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/adapters/hotelcsv"
	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/domain"
	"hotelmap/internal/storage/files"
)

// GeocodeService resolves hotel rows one at a time, in input order.
type GeocodeService struct {
	places   domain.PlaceSearcher
	encoding string
	progress func(total int) progress
}

func NewGeocodeService(p domain.PlaceSearcher, inputEncoding string) *GeocodeService {
	return &GeocodeService{places: p, encoding: inputEncoding, progress: newProgress}
}

// Geocode reads the CSV at inputPath, resolves every valid row and writes the
// matches to outputPath as a JSON array. Per-row misses are collected in the
// summary; any other error aborts the run before anything is written.
func (s *GeocodeService) Geocode(ctx context.Context, inputPath, outputPath string) (domain.Summary, error) {
	queries, err := hotelcsv.ReadFile(inputPath, s.encoding)
	if err != nil {
		return domain.Summary{}, err
	}
	log.Info().Str("path", inputPath).Int("rows", len(queries)).Msg("input loaded")

	records, sum, err := s.Run(ctx, queries)
	if err != nil {
		return sum, err
	}
	if err := files.WriteJSON(outputPath, records); err != nil {
		return sum, err
	}
	logSummary(sum, outputPath)
	return sum, nil
}

// Run resolves queries sequentially. The returned records keep input order
// and are never nil.
func (s *GeocodeService) Run(ctx context.Context, queries []domain.HotelQuery) ([]domain.HotelRecord, domain.Summary, error) {
	records := make([]domain.HotelRecord, 0, len(queries))
	sum := domain.Summary{Total: len(queries)}
	prog := s.progress(len(queries))
	defer prog.Done()

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		rec, err := s.resolve(ctx, q)
		prog.Step()

		switch {
		case err == nil && rec == nil:
			sum.Skipped++
			observability.ObserveRow("skipped")
		case err == nil:
			records = append(records, *rec)
			sum.Succeeded++
			observability.ObserveRow("ok")
			log.Debug().Int("row", q.Row).Str("name", q.Name).
				Float64("lng", rec.Lng).Float64("lat", rec.Lat).Msg("geocoded")
		case domain.IsRowMiss(err):
			sum.Failed++
			sum.Failures = append(sum.Failures, domain.FailureRecord{Query: q, Reason: err.Error()})
			observability.ObserveRow("no_result")
			log.Debug().Int("row", q.Row).Str("name", q.Name).Str("city", q.City).
				Str("reason", err.Error()).Msg("no match")
		default:
			observability.ObserveRow("fatal")
			return nil, sum, fmt.Errorf("row %d (%s @ %s): %w", q.Row, q.Name, q.City, err)
		}
	}
	return records, sum, nil
}

// resolve returns (nil, nil) for rows that are skipped without a query.
func (s *GeocodeService) resolve(ctx context.Context, q domain.HotelQuery) (*domain.HotelRecord, error) {
	if !q.Valid() {
		log.Warn().Int("row", q.Row).Str("name", q.Name).Str("city", q.City).
			Msg("incomplete row, skipped")
		return nil, nil
	}
	poi, err := s.places.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	rec, err := mapPlace(q, poi)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func logSummary(sum domain.Summary, outputPath string) {
	log.Info().
		Int("total", sum.Total).
		Int("succeeded", sum.Succeeded).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Str("output", outputPath).
		Msg("geocoding finished")
	for _, f := range sum.Failures {
		log.Warn().
			Int("row", f.Query.Row).
			Str("name", f.Query.Name).
			Str("city", f.Query.City).
			Str("reason", f.Reason).
			Msg("failed row")
	}
}
