package app

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hotelmap/internal/domain"
)

func decodePOI(t *testing.T, s string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}

func TestMapPlace_FullPOI(t *testing.T) {
	poi := decodePOI(t, `{
		"uid": "6d0d2a7f",
		"name": "北京国贸大酒店(国贸店)",
		"location": {"lat": 39.915123456789012, "lng": 116.467001},
		"province": "北京市",
		"city": "北京市",
		"area": "朝阳区",
		"address": "建国门外大街1号",
		"telephone": "(010)65052299",
		"detail_info": {"tag": "酒店;星级酒店", "overall_rating": 4.7, "children": []}
	}`)
	q := domain.HotelQuery{Row: 1, Name: "北京国贸大酒店", City: "北京"}

	got, err := mapPlace(q, poi)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.UID != "6d0d2a7f" || got.Name != q.Name || got.City != q.City {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.Province != "北京市" || got.Area != "朝阳区" || got.Address != "建国门外大街1号" {
		t.Fatalf("unexpected admin fields: %+v", got)
	}
	if got.Lat != 39.915123456789012 || got.Lng != 116.467001 {
		t.Fatalf("unexpected coords: %v,%v", got.Lng, got.Lat)
	}
	if got.Telephone != "(010)65052299" {
		t.Fatalf("unexpected telephone %q", got.Telephone)
	}
	want := `{"children":[],"overall_rating":4.7,"tag":"酒店;星级酒店"}`
	if string(got.DetailInfo) != want {
		t.Fatalf("detail_info = %s, want %s", got.DetailInfo, want)
	}
}

func TestMapPlace_MinimalPOI(t *testing.T) {
	poi := decodePOI(t, `{"uid":"u1","location":{"lat":"31.2","lng":"121.5"}}`)
	got, err := mapPlace(domain.HotelQuery{Row: 3, Name: "和平饭店", City: "上海"}, poi)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.Lng != 121.5 || got.Lat != 31.2 {
		t.Fatalf("string coords not parsed: %+v", got)
	}
	if got.Telephone != "" {
		t.Fatalf("expected empty telephone, got %q", got.Telephone)
	}
	if string(got.DetailInfo) != "{}" {
		t.Fatalf("expected {} detail_info, got %s", got.DetailInfo)
	}

	b, _ := json.Marshal(got)
	if strings.Contains(string(b), "telephone") {
		t.Fatalf("empty telephone must be omitted: %s", b)
	}
}

func TestMapPlace_NoCoordinates(t *testing.T) {
	poi := decodePOI(t, `{"uid":"u1","name":"x"}`)
	_, err := mapPlace(domain.HotelQuery{Row: 1, Name: "x", City: "y"}, poi)
	if !errors.Is(err, domain.ErrNoCoordinates) {
		t.Fatalf("expected ErrNoCoordinates, got %v", err)
	}
}
