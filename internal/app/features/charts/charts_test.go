package charts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	users     []models.User
	rooms     []models.Room
	bookings  []models.Booking
	locations []models.Location
	fail      map[string]error
}

func (f *fakeSource) ListUsers(context.Context) ([]models.User, error) {
	return f.users, f.fail[DimUsers]
}

func (f *fakeSource) ListRooms(context.Context) ([]models.Room, error) {
	if err := f.fail[DimRooms]; err != nil {
		return nil, err
	}
	return f.rooms, nil
}

func (f *fakeSource) ListBookings(context.Context) ([]models.Booking, error) {
	if err := f.fail[DimBookings]; err != nil {
		return nil, err
	}
	return f.bookings, nil
}

func (f *fakeSource) ListLocations(context.Context) ([]models.Location, error) {
	if err := f.fail[DimLocations]; err != nil {
		return nil, err
	}
	return f.locations, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	failed []string
	groups map[string]int
}

func (r *fakeRecorder) FetchFailed(dim string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, dim)
}

func (r *fakeRecorder) SeriesGroups(dim string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups == nil {
		r.groups = map[string]int{}
	}
	r.groups[dim] = n
}

func sampleSource() *fakeSource {
	return &fakeSource{
		users: []models.User{{ID: 1}, {ID: 2}, {ID: 3}},
		rooms: []models.Room{
			{ID: 1, Bedrooms: 2},
			{ID: 2, Bedrooms: 1},
			{ID: 3, Bedrooms: 2},
			{ID: 4},
		},
		bookings: []models.Booking{
			{ID: 1, CheckOut: "2024-03-10T00:00:00"},
			{ID: 2, CheckOut: "2023-12-31T00:00:00"},
			{ID: 3, CheckOut: "2024-03-01"},
			{ID: 4, CheckOut: "garbage"},
			{ID: 5, CheckOut: "2024-01-15T10:00:00Z"},
		},
		locations: []models.Location{
			{ID: 1, Province: "Hồ Chí Minh"},
			{ID: 2, Province: ""},
			{ID: 3, Province: "Đà Nẵng"},
			{ID: 4, Province: "Hồ Chí Minh"},
		},
	}
}

func TestBedroomLabel(t *testing.T) {
	tests := []struct {
		bedrooms int
		want     string
	}{
		{0, "0 bedrooms"},
		{1, "1 bedrooms"},
		{2, "2 bedrooms"},
		{10, "10 bedrooms"},
	}
	for _, tt := range tests {
		if got := BedroomLabel(models.Room{Bedrooms: tt.bedrooms}); got != tt.want {
			t.Errorf("BedroomLabel(%d) = %q, want %q", tt.bedrooms, got, tt.want)
		}
	}
}

func TestProvinceLabel_Fallback(t *testing.T) {
	if got := ProvinceLabel(models.Location{Province: ""}); got != UnspecifiedProvince {
		t.Errorf("empty province: got %q", got)
	}
	if got := ProvinceLabel(models.Location{Province: " Huế"}); got != " Huế" {
		t.Errorf("province should be kept verbatim: got %q", got)
	}
	if got := ProvinceLabel(models.Location{Province: "  "}); got != "  " {
		t.Errorf("blank province is not empty: got %q", got)
	}
}

func TestProvinceLabel_ExactEqualityGroups(t *testing.T) {
	locs := []models.Location{{Province: "Huế"}, {Province: " Huế"}, {Province: "Huế"}}
	got := aggregate.Count(locs, ProvinceLabel)
	want := aggregate.Series{{Label: "Huế", Total: 2}, {Label: " Huế", Total: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPalette_MatchesChartColours(t *testing.T) {
	want := []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4"}
	if !reflect.DeepEqual(Palette, want) {
		t.Errorf("Palette = %v", Palette)
	}
}

func TestCheckOutMonth(t *testing.T) {
	if got := CheckOutMonth(models.Booking{CheckOut: "2024-07-04T00:00:00"}); got != "07/2024" {
		t.Errorf("got %q", got)
	}
	if got := CheckOutMonth(models.Booking{}); got != aggregate.InvalidDateLabel {
		t.Errorf("missing date: got %q", got)
	}
}

func TestBuild_AggregatesEveryDimension(t *testing.T) {
	rec := &fakeRecorder{}
	b := &Builder{Source: sampleSource(), Metrics: rec, Log: zap.NewNop()}

	res := b.Build(context.Background())

	if res.Users != 3 {
		t.Errorf("users: got %d", res.Users)
	}
	wantRooms := aggregate.Series{{Label: "2 bedrooms", Total: 2}, {Label: "1 bedrooms", Total: 1}, {Label: "0 bedrooms", Total: 1}}
	if !reflect.DeepEqual(res.Rooms, wantRooms) {
		t.Errorf("rooms: got %+v", res.Rooms)
	}
	wantBookings := aggregate.Series{
		{Label: "12/2023", Total: 1},
		{Label: "01/2024", Total: 1},
		{Label: "03/2024", Total: 2},
		{Label: aggregate.InvalidDateLabel, Total: 1},
	}
	if !reflect.DeepEqual(res.Bookings, wantBookings) {
		t.Errorf("bookings: got %+v", res.Bookings)
	}
	wantLocs := aggregate.Series{{Label: "Hồ Chí Minh", Total: 2}, {Label: UnspecifiedProvince, Total: 1}, {Label: "Đà Nẵng", Total: 1}}
	if !reflect.DeepEqual(res.Locations, wantLocs) {
		t.Errorf("locations: got %+v", res.Locations)
	}
	if len(res.Failures) != 0 {
		t.Errorf("expected no failures, got %v", res.Failures)
	}
	if rec.groups[DimBookings] != 4 || rec.groups[DimRooms] != 3 || rec.groups[DimLocations] != 3 {
		t.Errorf("series group gauges: %v", rec.groups)
	}
}

func TestBuild_CountConservation(t *testing.T) {
	src := sampleSource()
	res := (&Builder{Source: src}).Build(context.Background())

	if res.Rooms.Sum() != len(src.rooms) {
		t.Errorf("rooms sum %d != %d", res.Rooms.Sum(), len(src.rooms))
	}
	if res.Bookings.Sum() != len(src.bookings) {
		t.Errorf("bookings sum %d != %d", res.Bookings.Sum(), len(src.bookings))
	}
	if res.Locations.Sum() != len(src.locations) {
		t.Errorf("locations sum %d != %d", res.Locations.Sum(), len(src.locations))
	}
}

func TestBuild_FetchFailureIsIsolated(t *testing.T) {
	src := sampleSource()
	src.fail = map[string]error{DimBookings: errors.New("connection reset")}
	rec := &fakeRecorder{}
	core, logs := observer.New(zap.WarnLevel)
	b := &Builder{Source: src, Metrics: rec, Log: zap.New(core)}

	res := b.Build(context.Background())

	if !res.Failed(DimBookings) {
		t.Fatal("expected bookings to be marked failed")
	}
	if len(res.Bookings) != 0 {
		t.Errorf("failed dimension should be empty, got %+v", res.Bookings)
	}
	if len(res.Rooms) == 0 || len(res.Locations) == 0 || res.Users != 3 {
		t.Error("other dimensions should still render")
	}

	var fe *FetchError
	if !errors.As(res.Failures[DimBookings], &fe) || fe.Dimension != DimBookings {
		t.Errorf("unexpected failure value: %v", res.Failures[DimBookings])
	}
	if !reflect.DeepEqual(rec.failed, []string{DimBookings}) {
		t.Errorf("fetch failure counter: %v", rec.failed)
	}
	if logs.FilterMessage("dashboard fetch failed").Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestBuild_AllFailing(t *testing.T) {
	boom := errors.New("down")
	src := &fakeSource{fail: map[string]error{
		DimUsers: boom, DimRooms: boom, DimBookings: boom, DimLocations: boom,
	}}
	res := (&Builder{Source: src}).Build(context.Background())

	if len(res.Failures) != 4 {
		t.Errorf("expected 4 failures, got %d", len(res.Failures))
	}
	if res.Rooms == nil || res.Bookings == nil || res.Locations == nil {
		t.Error("series must be non-nil even when empty")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	b := &Builder{Source: sampleSource()}
	a := b.Build(context.Background())
	c := b.Build(context.Background())
	if !reflect.DeepEqual(a.Bookings, c.Bookings) || !reflect.DeepEqual(a.Rooms, c.Rooms) {
		t.Error("repeated builds over the same data differ")
	}
}

func TestBarChart_Geometry(t *testing.T) {
	s := aggregate.Series{{Label: "a", Total: 4}, {Label: "b", Total: 2}, {Label: "c", Total: 0}}
	vm := BarChart("t", s, "label", "count")

	if len(vm.Bars) != 3 {
		t.Fatalf("bars: %d", len(vm.Bars))
	}
	tallest := vm.Bars[0]
	if tallest.Y+tallest.Height != tallest.BaseY {
		t.Errorf("bar should sit on the axis: y=%v h=%v base=%v", tallest.Y, tallest.Height, tallest.BaseY)
	}
	if vm.Bars[1].Height*2 != tallest.Height {
		t.Errorf("heights not proportional: %v vs %v", vm.Bars[1].Height, tallest.Height)
	}
	if vm.Bars[2].Height != 0 {
		t.Errorf("zero total should have zero height, got %v", vm.Bars[2].Height)
	}
	if vm.Bars[0].X >= vm.Bars[1].X {
		t.Error("bars should run left to right in series order")
	}
	if vm.Bars[1].Color != Palette[1] {
		t.Errorf("colour: got %s", vm.Bars[1].Color)
	}
	if vm.Rows[0]["label"] != "a" || vm.Rows[0]["count"] != 4 {
		t.Errorf("rows: %+v", vm.Rows)
	}
}

func TestBarChart_PaletteCycles(t *testing.T) {
	s := make(aggregate.Series, len(Palette)+1)
	for i := range s {
		s[i] = aggregate.GroupCount{Label: string(rune('a' + i)), Total: 1}
	}
	vm := BarChart("t", s, "l", "v")
	if vm.Bars[len(Palette)].Color != Palette[0] {
		t.Errorf("expected palette to wrap, got %s", vm.Bars[len(Palette)].Color)
	}
}

func TestBarChart_Empty(t *testing.T) {
	vm := BarChart("t", aggregate.Series{}, "l", "v")
	if !vm.Empty || len(vm.Bars) != 0 {
		t.Errorf("expected empty chart, got %+v", vm)
	}
}

func TestCards(t *testing.T) {
	res := Result{
		Users:     1234,
		Rooms:     aggregate.Series{{Label: "1 bedrooms", Total: 3}},
		Bookings:  aggregate.Series{},
		Locations: aggregate.Series{{Label: "x", Total: 2}},
		Failures:  map[string]*FetchError{DimBookings: {Dimension: DimBookings}},
	}
	cards := Cards(res)
	if len(cards) != 4 {
		t.Fatalf("cards: %d", len(cards))
	}
	if cards[0].Value != "1,234" {
		t.Errorf("users value: %q", cards[0].Value)
	}
	if !cards[1].Failed || cards[2].Failed {
		t.Errorf("failed flags wrong: %+v", cards)
	}
	if cards[2].Raw != 3 || cards[3].Raw != 2 {
		t.Errorf("raw counts: %+v", cards)
	}
}

func TestServeJSON(t *testing.T) {
	src := sampleSource()
	src.fail = map[string]error{DimLocations: errors.New("timeout")}
	h := NewHandler(&Builder{Source: src}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeJSON(rec, httptest.NewRequest(http.MethodGet, "/admin/charts.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}

	var body struct {
		Users     int              `json:"users"`
		Rooms     []map[string]any `json:"rooms"`
		Bookings  []map[string]any `json:"bookings"`
		Locations []map[string]any `json:"locations"`
		Failed    []string         `json:"failed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Users != 3 {
		t.Errorf("users: %d", body.Users)
	}
	if len(body.Bookings) != 4 || body.Bookings[0]["month"] != "12/2023" {
		t.Errorf("bookings: %+v", body.Bookings)
	}
	if body.Rooms[0]["bedrooms"] != "2 bedrooms" || body.Rooms[0]["count"] != float64(2) {
		t.Errorf("rooms: %+v", body.Rooms)
	}
	if len(body.Locations) != 0 {
		t.Errorf("failed locations should be empty, got %+v", body.Locations)
	}
	if !reflect.DeepEqual(body.Failed, []string{DimLocations}) {
		t.Errorf("failed: %v", body.Failed)
	}
}
