package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
	healthuc "github.com/kailas-cloud/ufotracker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
)

// --- Mocks ---

type mockSearch struct {
	textFn     func(ctx context.Context, query string, page, size int) (result.Result, error)
	advancedFn func(ctx context.Context, state string, objectType *string, minRel *int, page, size int) (result.Result, error)
	nearbyFn   func(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error)
	statsErr   error
	weeklyFn   func(ctx context.Context, date string) (searchuc.WeeklyTop, error)
}

func (m *mockSearch) TextSearch(ctx context.Context, query string, page, size int) (result.Result, error) {
	if m.textFn != nil {
		return m.textFn(ctx, query, page, size)
	}
	return result.Empty(), nil
}

func (m *mockSearch) AdvancedSearch(
	ctx context.Context, state string, objectType *string, minRel *int, page, size int,
) (result.Result, error) {
	if m.advancedFn != nil {
		return m.advancedFn(ctx, state, objectType, minRel, page, size)
	}
	return result.Empty(), nil
}

func (m *mockSearch) NearbySearch(ctx context.Context, lat, lon, radiusKm float64, size int) (result.Result, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, lat, lon, radiusKm, size)
	}
	return result.Empty(), nil
}

func (m *mockSearch) CategoryDistribution(_ context.Context) ([]analytics.CategoryCount, error) {
	return []analytics.CategoryCount{{Category: "Disco", Count: 4}, {Category: "Luz", Count: 2}}, m.statsErr
}

func (m *mockSearch) StateCounts(_ context.Context) ([]analytics.CategoryCount, error) {
	return []analytics.CategoryCount{{Category: "SP", Count: 9}}, m.statsErr
}

func (m *mockSearch) ReliabilityStatistics(_ context.Context) (analytics.ReliabilityStats, error) {
	return analytics.ReliabilityStats{Mean: 50, StdDev: 40, HighReliabilityCount: 1}, m.statsErr
}

func (m *mockSearch) MeanReliability(_ context.Context) (float64, error) { return 62.5, m.statsErr }

func (m *mockSearch) HourlyTimeline(_ context.Context) ([]analytics.TimelinePoint, error) {
	return analytics.EmptyTimeline(), m.statsErr
}

func (m *mockSearch) WeeklyTop(ctx context.Context, date string) (searchuc.WeeklyTop, error) {
	if m.weeklyFn != nil {
		return m.weeklyFn(ctx, date)
	}
	return searchuc.WeeklyTop{}, nil
}

func (m *mockSearch) WeeklyRanking(ctx context.Context, date string) (searchuc.WeeklyRanking, error) {
	top, err := m.WeeklyTop(ctx, date)
	if err != nil {
		return searchuc.WeeklyRanking{}, err
	}
	return searchuc.WeeklyRanking{Window: top.Window, Entries: analytics.Ranking(top.Tops)}, nil
}

type mockSightings struct {
	createFn func(ctx context.Context, rec sighting.Record) (sighting.Record, error)
	getFn    func(ctx context.Context, id string) (sighting.Record, error)
	updateFn func(ctx context.Context, id string, p sighting.Patch) (sighting.Record, error)
	listFn   func(ctx context.Context, page, size int) ([]sighting.Record, error)
}

func (m *mockSightings) Create(ctx context.Context, rec sighting.Record) (sighting.Record, error) {
	return m.createFn(ctx, rec)
}

func (m *mockSightings) Get(ctx context.Context, id string) (sighting.Record, error) {
	return m.getFn(ctx, id)
}

func (m *mockSightings) Update(ctx context.Context, id string, p sighting.Patch) (sighting.Record, error) {
	return m.updateFn(ctx, id, p)
}

func (m *mockSightings) List(ctx context.Context, page, size int) ([]sighting.Record, error) {
	return m.listFn(ctx, page, size)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

func intPtr(i int) *int { return &i }

func newTestRouter(t *testing.T, search SearchService, sightings SightingService) http.Handler {
	t.Helper()
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentSearch: healthuc.CheckOK},
	}}
	r := chi.NewRouter()
	NewServer(search, sightings, h, zap.NewNop()).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func testHit() sighting.Document {
	return sighting.NewDocument(sighting.Attrs{
		ID:          "s1",
		OccurredAt:  time.Date(2025, 3, 20, 21, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
		City:        "Campinas",
		State:       "SP",
		ObjectType:  "Disco",
		Description: "luz forte",
		Reliability: intPtr(90),
		Location:    sighting.GeoPoint{Lat: -22.9, Lon: -47.06},
	}).WithScore(1.5).WithHighlight("<mark><strong><em>luz</em></strong></mark> forte")
}

// --- Search routes ---

func TestTextSearch_DefaultsAndHighlight(t *testing.T) {
	var gotQuery string
	var gotPage, gotSize int
	s := &mockSearch{textFn: func(_ context.Context, q string, page, size int) (result.Result, error) {
		gotQuery, gotPage, gotSize = q, page, size
		return result.New(1, []sighting.Document{testHit()}), nil
	}}
	h := newTestRouter(t, s, nil)

	rr := do(t, h, "GET", "/sightings/search/text?text=luz+forte", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if gotQuery != "luz forte" || gotPage != 0 || gotSize != 10 {
		t.Errorf("call = %q %d %d", gotQuery, gotPage, gotSize)
	}

	resp := decode[SearchResponse](t, rr)
	if resp.Total != 1 || len(resp.Items) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	hit := resp.Items[0]
	if hit.Score == nil || *hit.Score != 1.5 {
		t.Errorf("score = %v", hit.Score)
	}
	if !strings.Contains(hit.Highlight, "<mark><strong><em>luz") {
		t.Errorf("highlight = %q", hit.Highlight)
	}
	if hit.Location.Lat != -22.9 || *hit.Reliability != 90 {
		t.Errorf("hit = %+v", hit)
	}
}

func TestTextSearch_BadPageFormat(t *testing.T) {
	h := newTestRouter(t, &mockSearch{}, nil)
	rr := do(t, h, "GET", "/sightings/search/text?text=luz&page=abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeBadRequest {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestAdvancedSearch_PassesFilters(t *testing.T) {
	var gotState string
	var gotType *string
	var gotMin *int
	s := &mockSearch{advancedFn: func(
		_ context.Context, state string, objectType *string, minRel *int, _, _ int,
	) (result.Result, error) {
		gotState, gotType, gotMin = state, objectType, minRel
		return result.Empty(), nil
	}}
	h := newTestRouter(t, s, nil)

	rr := do(t, h, "GET", "/sightings/search/advanced?state=RJ&min_reliability=70", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if gotState != "RJ" || gotType != nil || gotMin == nil || *gotMin != 70 {
		t.Errorf("call = %q %v %v", gotState, gotType, gotMin)
	}
	if resp := decode[SearchResponse](t, rr); resp.Items == nil {
		t.Error("items must be an empty array, not null")
	}
}

func TestAdvancedSearch_InvalidQuery(t *testing.T) {
	s := &mockSearch{advancedFn: func(context.Context, string, *string, *int, int, int) (result.Result, error) {
		return result.Result{}, fmt.Errorf("%w: state is required", domain.ErrInvalidQuery)
	}}
	h := newTestRouter(t, s, nil)

	rr := do(t, h, "GET", "/sightings/search/advanced", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != CodeInvalidQuery || !strings.Contains(resp.Message, "state is required") {
		t.Errorf("response = %+v", resp)
	}
}

func TestNearbySearch_RequiresCoordinates(t *testing.T) {
	h := newTestRouter(t, &mockSearch{}, nil)
	rr := do(t, h, "GET", "/sightings/search/nearby?lat=-22.9", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestNearbySearch_Binds(t *testing.T) {
	var gotLat, gotLon, gotRadius float64
	var gotSize int
	s := &mockSearch{nearbyFn: func(_ context.Context, lat, lon, radiusKm float64, size int) (result.Result, error) {
		gotLat, gotLon, gotRadius, gotSize = lat, lon, radiusKm, size
		return result.Empty(), nil
	}}
	h := newTestRouter(t, s, nil)

	rr := do(t, h, "GET", "/sightings/search/nearby?lat=-22.9&lon=-43.2&size=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if gotLat != -22.9 || gotLon != -43.2 || gotRadius != 0 || gotSize != 5 {
		t.Errorf("call = %v %v %v %d", gotLat, gotLon, gotRadius, gotSize)
	}
}

func TestSearch_BackendErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{fmt.Errorf("text search: %w", domain.ErrBackendUnavailable), http.StatusServiceUnavailable, CodeBackendUnavailable},
		{fmt.Errorf("text search: %w", domain.ErrDecodeFailure), http.StatusBadGateway, CodeBackendError},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range tests {
		s := &mockSearch{textFn: func(context.Context, string, int, int) (result.Result, error) {
			return result.Result{}, tc.err
		}}
		rr := do(t, newTestRouter(t, s, nil), "GET", "/sightings/search/text?text=luz", "")
		if rr.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rr.Code, tc.status)
			continue
		}
		resp := decode[ErrorResponse](t, rr)
		if resp.Code != tc.code {
			t.Errorf("%v: code = %s, want %s", tc.err, resp.Code, tc.code)
		}
		if strings.Contains(resp.Message, "text search") || strings.Contains(resp.Message, "boom") {
			t.Errorf("internal detail leaked: %q", resp.Message)
		}
	}
}

// --- Statistics routes ---

func TestStats_Routes(t *testing.T) {
	h := newTestRouter(t, &mockSearch{}, nil)

	rr := do(t, h, "GET", "/sightings/search/stats/object-types", "")
	counts := decode[[]CategoryCountResponse](t, rr)
	if len(counts) != 2 || counts[0].Category != "Disco" || counts[0].Count != 4 {
		t.Errorf("object types = %+v", counts)
	}

	rr = do(t, h, "GET", "/sightings/search/stats/reliability", "")
	st := decode[ReliabilityStatsResponse](t, rr)
	if st.Mean != 50 || st.StdDev != 40 || st.HighReliabilityCount != 1 {
		t.Errorf("stats = %+v", st)
	}

	rr = do(t, h, "GET", "/sightings/search/stats/reliability/mean", "")
	if m := decode[MeanResponse](t, rr); m.Mean != 62.5 {
		t.Errorf("mean = %v", m.Mean)
	}

	rr = do(t, h, "GET", "/sightings/search/stats/timeline", "")
	if pts := decode[[]TimelinePointResponse](t, rr); len(pts) != 8 || pts[7].Label != "21h" {
		t.Errorf("timeline = %+v", pts)
	}

	rr = do(t, h, "GET", "/sightings/search/stats/states", "")
	if c := decode[[]CategoryCountResponse](t, rr); len(c) != 1 || c[0].Category != "SP" {
		t.Errorf("states = %+v", c)
	}
}

// --- Weekly routes ---

func weeklyStub(t *testing.T) *mockSearch {
	t.Helper()
	return &mockSearch{weeklyFn: func(_ context.Context, date string) (searchuc.WeeklyTop, error) {
		ref, err := week.ParseReference(date)
		if err != nil {
			return searchuc.WeeklyTop{}, err
		}
		tops := []analytics.WeeklyTopSighting{
			{State: "SP", Sighting: testHit()},
			{State: "RJ", Sighting: sighting.NewDocument(sighting.Attrs{ID: "rj", State: "RJ"})},
		}
		return searchuc.WeeklyTop{Window: week.PreviousWeek(ref), Tops: tops}, nil
	}}
}

func TestWeeklyTop_WeekLabels(t *testing.T) {
	h := newTestRouter(t, weeklyStub(t), nil)

	rr := do(t, h, "GET", "/sightings/search/weekly/top?date=2025-03-26", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	resp := decode[WeeklyTopResponse](t, rr)
	if resp.WeekStart != "2025-03-17" || resp.WeekEnd != "2025-03-23" {
		t.Errorf("week = %s .. %s", resp.WeekStart, resp.WeekEnd)
	}
	if len(resp.Items) != 2 || resp.Items[0].Sighting.ID != "s1" {
		t.Errorf("items = %+v", resp.Items)
	}
	if resp.Items[0].Sighting.Score != nil {
		t.Error("weekly hits carry no score")
	}
}

func TestWeeklyRanking_NullReliability(t *testing.T) {
	h := newTestRouter(t, weeklyStub(t), nil)

	rr := do(t, h, "GET", "/sightings/search/weekly/ranking?date=2025-03-26", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if !strings.Contains(rr.Body.String(), `{"state":"RJ","reliability":null}`) {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestWeekly_InvalidDate(t *testing.T) {
	h := newTestRouter(t, weeklyStub(t), nil)

	for _, target := range []string{
		"/sightings/search/weekly/top?date=26-03-2025",
		"/sightings/search/weekly/ranking",
	} {
		rr := do(t, h, "GET", target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, rr.Code)
			continue
		}
		if resp := decode[ErrorResponse](t, rr); resp.Code != CodeInvalidDate {
			t.Errorf("%s: code = %s", target, resp.Code)
		}
	}
}

// --- Catalog routes ---

func TestCreateSighting_Created(t *testing.T) {
	var got sighting.Record
	m := &mockSightings{createFn: func(_ context.Context, rec sighting.Record) (sighting.Record, error) {
		got = rec
		rec.ID = "new-id"
		return rec, nil
	}}
	h := newTestRouter(t, &mockSearch{}, m)

	body := `{"latitude":-23.5,"longitude":-46.6,"city":"São Paulo","state":"SP",` +
		`"object_type":"Disco","description":"luz","reliability":80}`
	rr := do(t, h, "POST", "/sightings", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if rr.Header().Get("Location") != "/sightings/new-id" {
		t.Errorf("Location = %q", rr.Header().Get("Location"))
	}
	if !got.OccurredAt.IsZero() {
		t.Error("absent occurred_at must reach the service as zero")
	}
	if got.City != "São Paulo" || *got.Reliability != 80 {
		t.Errorf("record = %+v", got)
	}
}

func TestCreateSighting_Validation(t *testing.T) {
	m := &mockSightings{createFn: func(context.Context, sighting.Record) (sighting.Record, error) {
		return sighting.Record{}, fmt.Errorf("%w: city is required", domain.ErrInvalidSighting)
	}}
	h := newTestRouter(t, &mockSearch{}, m)

	rr := do(t, h, "POST", "/sightings", `{"state":"SP"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != CodeValidationFailed {
		t.Errorf("code = %s", resp.Code)
	}

	rr = do(t, h, "POST", "/sightings", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", rr.Code)
	}
}

func TestGetSighting_NotFound(t *testing.T) {
	m := &mockSightings{getFn: func(_ context.Context, id string) (sighting.Record, error) {
		return sighting.Record{}, fmt.Errorf("get sighting %s: %w", id, domain.ErrNotFound)
	}}
	h := newTestRouter(t, &mockSearch{}, m)

	rr := do(t, h, "GET", "/sightings/abc", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Message != domain.ErrNotFound.Error() {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestUpdateSighting_Patch(t *testing.T) {
	var gotID string
	var gotPatch sighting.Patch
	m := &mockSightings{updateFn: func(_ context.Context, id string, p sighting.Patch) (sighting.Record, error) {
		gotID, gotPatch = id, p
		return sighting.Record{ID: id, City: *p.City}, nil
	}}
	h := newTestRouter(t, &mockSearch{}, m)

	rr := do(t, h, "PUT", "/sightings/abc", `{"city":"Campinas"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if gotID != "abc" || gotPatch.City == nil || gotPatch.Latitude != nil || gotPatch.Reliability != nil {
		t.Errorf("call = %q %+v", gotID, gotPatch)
	}
}

func TestListSightings_Paging(t *testing.T) {
	var gotPage, gotSize int
	m := &mockSightings{listFn: func(_ context.Context, page, size int) ([]sighting.Record, error) {
		gotPage, gotSize = page, size
		return []sighting.Record{{ID: "a"}}, nil
	}}
	h := newTestRouter(t, &mockSearch{}, m)

	rr := do(t, h, "GET", "/sightings?page=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if gotPage != 2 || gotSize != 10 {
		t.Errorf("call = %d %d", gotPage, gotSize)
	}
	if resp := decode[SightingListResponse](t, rr); resp.Page != 2 || len(resp.Items) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

// --- Health ---

func TestHealthCheck_Unhealthy503(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Unhealthy,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentSearch: healthuc.CheckError},
	}}
	r := chi.NewRouter()
	NewServer(&mockSearch{}, nil, h, zap.NewNop()).Register(r)

	rr := do(t, r, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "error" || resp.Checks["search"] != "error" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHealthCheck_OK(t *testing.T) {
	rr := do(t, newTestRouter(t, &mockSearch{}, nil), "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
