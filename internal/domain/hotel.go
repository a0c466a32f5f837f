package domain

import "encoding/json"

// HotelQuery is one data row of the input CSV.
type HotelQuery struct {
	Row  int // 1-based data row, header excluded
	Name string
	City string
}

// Valid reports whether both name and city are present.
func (q HotelQuery) Valid() bool { return q.Name != "" && q.City != "" }

// Text is the free-text query sent to the place search.
func (q HotelQuery) Text() string { return q.Name + " " + q.City }

// HotelRecord is one geocoded hotel as written to the output JSON.
// Lng/Lat are kept in the provider's coordinate system.
type HotelRecord struct {
	UID        string          `json:"uid"`
	Name       string          `json:"name"`
	City       string          `json:"city"`
	Province   string          `json:"province"`
	Area       string          `json:"area"`
	Address    string          `json:"address"`
	Lng        float64         `json:"lng"`
	Lat        float64         `json:"lat"`
	Telephone  string          `json:"telephone,omitempty"`
	DetailInfo json.RawMessage `json:"detail_info"`
}

// FailureRecord is a queried row that produced no record.
type FailureRecord struct {
	Query  HotelQuery
	Reason string
}

// Summary is the outcome of one geocoder run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []FailureRecord
}
