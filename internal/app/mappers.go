package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/domain"
)

/********** alias registry (single source of truth) **********/

var poiAliases = map[string][]string{
	"uid":       {"uid", "id"},
	"province":  {"province", "addr_province"},
	"area":      {"area", "district", "addr_area"},
	"address":   {"address", "formatted_address", "addr"},
	"telephone": {"telephone", "tel", "phone", "detail_info.telephone"},
}

var (
	lngPaths = []string{"location.lng", "location.lon", "lng"}
	latPaths = []string{"location.lat", "lat"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
// Numbers are rendered as written (some providers send numeric phone fields).
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (json.Number/float64/int/string).
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

/********** place mapper **********/

// mapPlace builds the output record for q from the provider's best POI.
// Name and city echo the query so output rows join back to the input.
func mapPlace(q domain.HotelQuery, poi map[string]any) (domain.HotelRecord, error) {
	lng := getFloatFlexible(poi, lngPaths...)
	lat := getFloatFlexible(poi, latPaths...)
	if lng == nil || lat == nil {
		return domain.HotelRecord{}, domain.ErrNoCoordinates
	}

	detail := json.RawMessage(`{}`)
	if d := lookupAny(poi, "detail_info"); d != nil {
		b, err := json.Marshal(d)
		if err != nil {
			log.Error().Err(err).
				Str("context", "mapPlace").
				Int("row", q.Row).
				Msg("failed to marshal detail_info")
			return domain.HotelRecord{}, fmt.Errorf("detail_info: %w", err)
		}
		detail = b
	}

	return domain.HotelRecord{
		UID:        firstNonEmptyAlias(poi, poiAliases, "uid"),
		Name:       q.Name,
		City:       q.City,
		Province:   firstNonEmptyAlias(poi, poiAliases, "province"),
		Area:       firstNonEmptyAlias(poi, poiAliases, "area"),
		Address:    firstNonEmptyAlias(poi, poiAliases, "address"),
		Lng:        *lng,
		Lat:        *lat,
		Telephone:  firstNonEmptyAlias(poi, poiAliases, "telephone"),
		DetailInfo: detail,
	}, nil
}
