package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	redisad "hotelmap/internal/adapters/redis"
	"hotelmap/internal/app"
	"hotelmap/internal/domain"
)

// ---- fakes ----

type fakePlaces struct {
	pois  map[string]map[string]any // keyed by name
	fatal map[string]error
	calls []string
}

func (f *fakePlaces) Search(ctx context.Context, q domain.HotelQuery) (map[string]any, error) {
	f.calls = append(f.calls, q.Name)
	if err, ok := f.fatal[q.Name]; ok {
		return nil, err
	}
	poi, ok := f.pois[q.Name]
	if !ok {
		return nil, domain.ErrNoResults
	}
	return poi, nil
}

func poi(uid string, lng, lat float64) map[string]any {
	return map[string]any{
		"uid":      uid,
		"location": map[string]any{"lng": lng, "lat": lat},
		"province": "北京市",
		"area":     "朝阳区",
		"address":  "建国门外大街1号",
	}
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hotels.csv")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func readRecords(t *testing.T, path string) []domain.HotelRecord {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var out []domain.HotelRecord
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return out
}

var ignoreDetail = cmpopts.IgnoreFields(domain.HotelRecord{}, "DetailInfo")

// ---- tests ----

func TestGeocode_SpecExample(t *testing.T) {
	places := &fakePlaces{pois: map[string]map[string]any{
		"北京国贸大酒店": poi("u1", 116.467, 39.915),
	}}
	in := writeCSV(t, "name,city\n北京国贸大酒店,北京\n,上海\n")
	out := filepath.Join(t.TempDir(), "output", "hotels.json")

	sum, err := app.NewGeocodeService(places, "utf-8").Geocode(context.Background(), in, out)
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	want := []domain.HotelRecord{{
		UID: "u1", Name: "北京国贸大酒店", City: "北京", Province: "北京市", Area: "朝阳区",
		Address: "建国门外大街1号", Lng: 116.467, Lat: 39.915,
	}}
	if diff := cmp.Diff(want, readRecords(t, out), ignoreDetail); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if sum.Succeeded != 1 || sum.Skipped != 1 || sum.Failed != 0 || sum.Total != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if diff := cmp.Diff([]string{"北京国贸大酒店"}, places.calls); diff != "" {
		t.Fatalf("the skipped row must not be queried:\n%s", diff)
	}
}

func TestRun_OrderMissesAndDuplicates(t *testing.T) {
	places := &fakePlaces{pois: map[string]map[string]any{
		"A": poi("a", 1, 1),
		"C": poi("c", 3, 3),
	}}
	queries := []domain.HotelQuery{
		{Row: 1, Name: "C", City: "x"},
		{Row: 2, Name: "B", City: "x"}, // no results
		{Row: 3, Name: "A", City: ""},  // skipped
		{Row: 4, Name: "A", City: "x"},
		{Row: 5, Name: "C", City: "x"}, // duplicate, queried again
	}

	recs, sum, err := app.NewGeocodeService(places, "").Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var uids []string
	for _, r := range recs {
		uids = append(uids, r.UID)
	}
	if diff := cmp.Diff([]string{"c", "a", "c"}, uids); diff != "" {
		t.Fatalf("order mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C", "B", "A", "C"}, places.calls); diff != "" {
		t.Fatalf("calls mismatch:\n%s", diff)
	}
	wantFail := []domain.FailureRecord{{Query: queries[1], Reason: "no results"}}
	if diff := cmp.Diff(wantFail, sum.Failures); diff != "" {
		t.Fatalf("failures mismatch:\n%s", diff)
	}
	if sum.Succeeded != 3 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestGeocode_HeaderOnlyWritesEmptyArray(t *testing.T) {
	in := writeCSV(t, "name,city\n")
	out := filepath.Join(t.TempDir(), "hotels.json")

	if _, err := app.NewGeocodeService(&fakePlaces{}, "utf-8").Geocode(context.Background(), in, out); err != nil {
		t.Fatalf("geocode: %v", err)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "[]\n" {
		t.Fatalf("expected empty array, got %q", b)
	}
}

func TestGeocode_FatalErrorWritesNothing(t *testing.T) {
	places := &fakePlaces{
		pois:  map[string]map[string]any{"A": poi("a", 1, 1)},
		fatal: map[string]error{"B": errors.New("dial tcp: i/o timeout")},
	}
	in := writeCSV(t, "name,city\nA,x\nB,x\nC,x\n")
	out := filepath.Join(t.TempDir(), "hotels.json")

	_, err := app.NewGeocodeService(places, "utf-8").Geocode(context.Background(), in, out)
	if err == nil {
		t.Fatalf("expected fatal error")
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Fatalf("output must not exist after a fatal error")
	}
	if diff := cmp.Diff([]string{"A", "B"}, places.calls); diff != "" {
		t.Fatalf("run must stop at the failing row:\n%s", diff)
	}
}

func TestGeocode_MissingInput(t *testing.T) {
	_, err := app.NewGeocodeService(&fakePlaces{}, "utf-8").
		Geocode(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), filepath.Join(t.TempDir(), "o.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := app.NewGeocodeService(&fakePlaces{}, "").
		Run(ctx, []domain.HotelQuery{{Row: 1, Name: "A", City: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCachedSearcher_HitsSkipProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	defer cache.Close()

	places := &fakePlaces{pois: map[string]map[string]any{"A": poi("a", 1, 2)}}
	cs := app.NewCachedSearcher(places, cache, time.Hour)
	queries := []domain.HotelQuery{
		{Row: 1, Name: "A", City: "x"},
		{Row: 2, Name: "B", City: "x"},
		{Row: 3, Name: "A", City: "x"},
		{Row: 4, Name: "B", City: "x"},
	}

	recs, sum, err := app.NewGeocodeService(cs, "").Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(recs) != 2 || recs[1].Lng != 1 || recs[1].Lat != 2 {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if sum.Failed != 2 {
		t.Fatalf("misses must not be cached: %+v", sum)
	}
	if diff := cmp.Diff([]string{"A", "B", "B"}, places.calls); diff != "" {
		t.Fatalf("calls mismatch:\n%s", diff)
	}
}

func TestCachedSearcher_HitKeepsDetailInfo(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	defer cache.Close()

	p := poi("a", 1, 2)
	p["detail_info"] = map[string]any{
		"price": json.Number("1.0"),
		"id":    json.Number("12345678901234567890"),
	}
	places := &fakePlaces{pois: map[string]map[string]any{"A": p}}
	queries := []domain.HotelQuery{
		{Row: 1, Name: "A", City: "x"},
		{Row: 2, Name: "A", City: "x"},
	}

	recs, _, err := app.NewGeocodeService(app.NewCachedSearcher(places, cache, time.Hour), "").
		Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(places.calls) != 1 {
		t.Fatalf("second row should be a cache hit, calls=%v", places.calls)
	}
	miss, hit := string(recs[0].DetailInfo), string(recs[1].DetailInfo)
	if miss != `{"id":12345678901234567890,"price":1.0}` {
		t.Fatalf("unexpected detail_info: %s", miss)
	}
	if hit != miss {
		t.Fatalf("detail_info changed on cache hit:\nmiss: %s\nhit:  %s", miss, hit)
	}
}

type brokenCache struct{ gets, sets int }

func (c *brokenCache) Get(context.Context, string, any) (bool, error) {
	c.gets++
	return false, errors.New("connection refused")
}

func (c *brokenCache) Set(context.Context, string, any, time.Duration) error {
	c.sets++
	return errors.New("connection refused")
}

func TestCachedSearcher_CacheErrorsFallThrough(t *testing.T) {
	places := &fakePlaces{pois: map[string]map[string]any{"A": poi("a", 1, 2)}}
	cache := &brokenCache{}
	queries := []domain.HotelQuery{
		{Row: 1, Name: "A", City: "x"},
		{Row: 2, Name: "A", City: "x"},
	}

	recs, sum, err := app.NewGeocodeService(app.NewCachedSearcher(places, cache, time.Hour), "").
		Run(context.Background(), queries)
	if err != nil {
		t.Fatalf("cache errors must not abort the run: %v", err)
	}
	if len(recs) != 2 || sum.Succeeded != 2 {
		t.Fatalf("unexpected result: recs=%+v sum=%+v", recs, sum)
	}
	if diff := cmp.Diff([]string{"A", "A"}, places.calls); diff != "" {
		t.Fatalf("every row should reach the provider:\n%s", diff)
	}
	if cache.gets != 2 || cache.sets != 2 {
		t.Fatalf("cache not consulted: %+v", cache)
	}
}

func TestCachedSearcher_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	defer cache.Close()
	mr.Close()

	places := &fakePlaces{pois: map[string]map[string]any{"A": poi("a", 1, 2)}}
	recs, _, err := app.NewGeocodeService(app.NewCachedSearcher(places, cache, time.Hour), "").
		Run(context.Background(), []domain.HotelQuery{{Row: 1, Name: "A", City: "x"}, {Row: 2, Name: "A", City: "x"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(recs) != 2 || len(places.calls) != 2 {
		t.Fatalf("expected two provider calls and records, got calls=%v recs=%d", places.calls, len(recs))
	}
}
