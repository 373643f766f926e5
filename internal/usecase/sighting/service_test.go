package sighting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// --- Mocks ---

type mockCatalog struct {
	recs      map[string]domsighting.Record
	createErr error
	updateErr error
	listErr   error

	lastOffset, lastLimit int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{recs: make(map[string]domsighting.Record)}
}

func (m *mockCatalog) Create(_ context.Context, rec domsighting.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.recs[rec.ID]; ok {
		return fmt.Errorf("duplicate id %s", rec.ID)
	}
	m.recs[rec.ID] = rec
	return nil
}

func (m *mockCatalog) Update(_ context.Context, rec domsighting.Record) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.recs[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	m.recs[rec.ID] = rec
	return nil
}

func (m *mockCatalog) Get(_ context.Context, id string) (domsighting.Record, error) {
	rec, ok := m.recs[id]
	if !ok {
		return domsighting.Record{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *mockCatalog) List(_ context.Context, offset, limit int) ([]domsighting.Record, error) {
	m.lastOffset, m.lastLimit = offset, limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.recs))
	for id := range m.recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:min(offset+limit, len(ids))]
	out := make([]domsighting.Record, len(ids))
	for i, id := range ids {
		out[i] = m.recs[id]
	}
	return out, nil
}

type mockIndexer struct {
	upsertFn func(ctx context.Context, d domsighting.Document) error
	manyFn   func(ctx context.Context, docs []domsighting.Document) error

	docs      []domsighting.Document
	manyCalls int
}

func (m *mockIndexer) Upsert(ctx context.Context, d domsighting.Document) error {
	if m.upsertFn != nil {
		if err := m.upsertFn(ctx, d); err != nil {
			return err
		}
	}
	m.docs = append(m.docs, d)
	return nil
}

func (m *mockIndexer) UpsertMany(ctx context.Context, docs []domsighting.Document) error {
	m.manyCalls++
	if m.manyFn != nil {
		if err := m.manyFn(ctx, docs); err != nil {
			return err
		}
	}
	m.docs = append(m.docs, docs...)
	return nil
}

var fixedNow = time.Date(2025, 3, 26, 15, 30, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func validRecord() domsighting.Record {
	return domsighting.Record{
		OccurredAt:  time.Date(2025, 3, 20, 21, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
		Latitude:    -23.55,
		Longitude:   -46.63,
		City:        "São Paulo",
		State:       "SP",
		ObjectType:  "Disco",
		Description: "luz forte no céu",
		Reliability: intPtr(80),
	}
}

func newTestService(t *testing.T) (*Service, *mockCatalog, *mockIndexer) {
	t.Helper()
	c := newMockCatalog()
	idx := &mockIndexer{}
	n := 0
	svc := New(c, idx).
		WithClock(func() time.Time { return fixedNow }).
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%02d", n)
		})
	return svc, c, idx
}

// --- Create ---

func TestCreate_StoresAndIndexes(t *testing.T) {
	svc, c, idx := newTestService(t)

	rec, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "id-01" {
		t.Errorf("ID = %q, want id-01", rec.ID)
	}
	if _, ok := c.recs["id-01"]; !ok {
		t.Error("record not stored in catalog")
	}
	if len(idx.docs) != 1 || idx.docs[0].ID() != "id-01" {
		t.Fatalf("indexed docs = %+v", idx.docs)
	}
	if idx.docs[0].Location().Lat != -23.55 {
		t.Errorf("location = %+v", idx.docs[0].Location())
	}
}

func TestCreate_DefaultsOccurredAtToNow(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validRecord()
	in.OccurredAt = time.Time{}
	rec, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.OccurredAt.Equal(fixedNow) {
		t.Errorf("OccurredAt = %v, want %v", rec.OccurredAt, fixedNow)
	}
	if _, off := rec.OccurredAt.Zone(); off != -3*3600 {
		t.Errorf("offset = %d, want -10800", off)
	}
}

func TestCreate_InvalidRecord(t *testing.T) {
	svc, c, idx := newTestService(t)

	in := validRecord()
	in.State = "SAO"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidSighting) {
		t.Fatalf("error = %v, want ErrInvalidSighting", err)
	}
	if len(c.recs) != 0 || len(idx.docs) != 0 {
		t.Error("invalid record must not be stored")
	}
}

func TestCreate_IndexErrorPropagates(t *testing.T) {
	svc, _, idx := newTestService(t)
	idx.upsertFn = func(context.Context, domsighting.Document) error { return domain.ErrBackendUnavailable }

	_, err := svc.Create(context.Background(), validRecord())
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

// --- Get / Update ---

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_AppliesPatchAndReindexes(t *testing.T) {
	svc, c, idx := newTestService(t)
	rec, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	city := "Campinas"
	got, err := svc.Update(context.Background(), rec.ID, domsighting.Patch{City: &city, Reliability: intPtr(40)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.City != "Campinas" || *got.Reliability != 40 {
		t.Errorf("record = %+v", got)
	}
	if c.recs[rec.ID].City != "Campinas" {
		t.Error("catalog not updated")
	}
	if len(idx.docs) != 2 || idx.docs[1].City() != "Campinas" {
		t.Errorf("indexed docs = %d", len(idx.docs))
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	svc, _, idx := newTestService(t)
	rec, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Update(context.Background(), rec.ID, domsighting.Patch{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.docs) != 1 {
		t.Errorf("indexed docs = %d, want 1", len(idx.docs))
	}
}

func TestUpdate_InvalidPatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lat := 91.0
	_, err = svc.Update(context.Background(), rec.ID, domsighting.Patch{Latitude: &lat})
	if !errors.Is(err, domain.ErrInvalidSighting) {
		t.Fatalf("error = %v, want ErrInvalidSighting", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	city := "Campinas"
	_, err := svc.Update(context.Background(), "missing", domsighting.Patch{City: &city})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// --- List ---

func TestList_ClampsPaging(t *testing.T) {
	svc, c, _ := newTestService(t)

	tests := []struct {
		page, size            int
		wantOffset, wantLimit int
	}{
		{0, 10, 0, 10},
		{2, 10, 20, 10},
		{-1, 0, 0, 1},
		{1, 1000, MaxPageSize, MaxPageSize},
		{math.MaxInt, 10, (math.MaxInt/10 - 1) * 10, 10},
	}
	for _, tt := range tests {
		if _, err := svc.List(context.Background(), tt.page, tt.size); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.lastOffset != tt.wantOffset || c.lastLimit != tt.wantLimit {
			t.Errorf("List(%d, %d) -> offset %d limit %d, want %d %d",
				tt.page, tt.size, c.lastOffset, c.lastLimit, tt.wantOffset, tt.wantLimit)
		}
	}
}

// --- Import ---

func TestImport_PerItemResults(t *testing.T) {
	svc, _, idx := newTestService(t)

	bad := validRecord()
	bad.City = ""
	withID := validRecord()
	withID.ID = "given"

	results := svc.Import(context.Background(), []domsighting.Record{validRecord(), bad, withID})
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Status() != dombatch.StatusOK || results[0].ID() != "id-01" {
		t.Errorf("result 0 = %s %q", results[0].Status(), results[0].ID())
	}
	if results[1].Status() != dombatch.StatusError || !errors.Is(results[1].Err(), domain.ErrInvalidSighting) {
		t.Errorf("result 1 = %s %v", results[1].Status(), results[1].Err())
	}
	if results[1].Line() != 2 {
		t.Errorf("result 1 line = %d", results[1].Line())
	}
	if results[2].ID() != "given" || results[2].Status() != dombatch.StatusOK {
		t.Errorf("result 2 = %s %q", results[2].Status(), results[2].ID())
	}
	if idx.manyCalls != 1 || len(idx.docs) != 2 {
		t.Errorf("bulk calls = %d, docs = %d", idx.manyCalls, len(idx.docs))
	}
}

func TestImport_DuplicateIDFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	a := validRecord()
	a.ID = "dup"
	results := svc.Import(context.Background(), []domsighting.Record{a, a})
	if results[0].Status() != dombatch.StatusOK || results[1].Status() != dombatch.StatusError {
		t.Errorf("statuses = %s, %s", results[0].Status(), results[1].Status())
	}
}

func TestImport_IndexFailureMarksStored(t *testing.T) {
	svc, _, idx := newTestService(t)
	idx.manyFn = func(context.Context, []domsighting.Document) error { return domain.ErrBackendUnavailable }

	results := svc.Import(context.Background(), []domsighting.Record{validRecord(), validRecord()})
	for i, r := range results {
		if !errors.Is(r.Err(), domain.ErrBackendUnavailable) {
			t.Errorf("result %d err = %v", i, r.Err())
		}
		if r.ID() == "" {
			t.Errorf("result %d lost its id", i)
		}
	}
}

func TestImport_TooLarge(t *testing.T) {
	svc, c, _ := newTestService(t)
	svc.WithMaxImportSize(1)

	results := svc.Import(context.Background(), []domsighting.Record{validRecord(), validRecord()})
	ok, failed := dombatch.Summary(results)
	if ok != 0 || failed != 2 {
		t.Errorf("summary = %d/%d, want 0/2", ok, failed)
	}
	if len(c.recs) != 0 {
		t.Error("nothing must be stored")
	}
}

// --- Reindex ---

func TestReindex_PagesThroughCatalog(t *testing.T) {
	svc, c, idx := newTestService(t)
	for i := 0; i < 5; i++ {
		rec := validRecord()
		rec.ID = fmt.Sprintf("r%d", i)
		c.recs[rec.ID] = rec
	}

	n, err := svc.Reindex(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 || len(idx.docs) != 5 {
		t.Errorf("reindexed = %d, docs = %d", n, len(idx.docs))
	}
	if idx.manyCalls != 3 {
		t.Errorf("bulk calls = %d, want 3", idx.manyCalls)
	}
}

func TestReindex_ListError(t *testing.T) {
	svc, c, _ := newTestService(t)
	c.listErr = errors.New("disk I/O error")

	if _, err := svc.Reindex(context.Background(), 10); err == nil {
		t.Fatal("expected error")
	}
}
