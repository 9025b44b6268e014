package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
	"github.com/majorossy/phreshfoods.com-sub003/internal/repository"
)

type mockBusinessesRepository struct {
	list    func(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error)
	replace func(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error)
}

func (m *mockBusinessesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, errors.New("list not implemented")
}

func (m *mockBusinessesRepository) ReplaceAll(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error) {
	if m.replace != nil {
		return m.replace(ctx, businesses)
	}
	return repository.ReplaceResult{}, errors.New("replace not implemented")
}

type stubSource struct {
	businesses []entity.Business
	err        error
}

func (s *stubSource) Fetch(ctx context.Context) ([]entity.Business, error) {
	return s.businesses, s.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestDirectoryService_RefreshStoresNormalizedRecords(t *testing.T) {
	var stored []entity.Business
	repo := &mockBusinessesRepository{
		replace: func(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error) {
			stored = businesses
			return repository.ReplaceResult{Stored: len(businesses), Removed: 4}, nil
		},
	}
	source := &stubSource{businesses: []entity.Business{
		{Name: "Harbor Fish", Phone: "(207) 775-0251", Website: "harborfish.com"},
	}}

	svc := NewDirectoryService(repo, WithSource(source), WithServiceLogger(quietLogger()))
	summary, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Fetched != 1 || summary.Stored != 1 || summary.Removed != 4 || summary.SourceError != "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(stored) != 1 || stored[0].PhoneE164 != "+12077750251" || stored[0].WebsiteURL != "https://harborfish.com" {
		t.Fatalf("expected normalized record, got %+v", stored)
	}
	if stored[0].Phone != "(207) 775-0251" {
		t.Fatalf("expected raw phone to be kept, got %q", stored[0].Phone)
	}
}

func TestDirectoryService_RefreshSourceFailureKeepsSnapshot(t *testing.T) {
	replaced := false
	repo := &mockBusinessesRepository{
		replace: func(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error) {
			replaced = true
			return repository.ReplaceResult{}, nil
		},
	}
	buf := &bytes.Buffer{}
	svc := NewDirectoryService(repo,
		WithSource(&stubSource{err: errors.New("sheet endpoint returned status 503")}),
		WithServiceLogger(log.New(buf, "", 0)),
	)

	summary, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("expected failure to be absorbed, got %v", err)
	}
	if summary.Fetched != 0 || !strings.Contains(summary.SourceError, "503") {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if replaced {
		t.Fatalf("store must not be touched when the fetch fails")
	}
	if !strings.Contains(buf.String(), "sheet refresh failed") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
}

func TestDirectoryService_RefreshEmptySheetKeepsSnapshot(t *testing.T) {
	replaced := false
	repo := &mockBusinessesRepository{
		replace: func(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error) {
			replaced = true
			return repository.ReplaceResult{Removed: 50}, nil
		},
	}
	buf := &bytes.Buffer{}
	svc := NewDirectoryService(repo,
		WithSource(&stubSource{businesses: []entity.Business{}}),
		WithServiceLogger(log.New(buf, "", 0)),
	)

	summary, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replaced {
		t.Fatalf("an empty sheet must not replace the stored snapshot")
	}
	if summary.SourceError != ErrEmptySheet.Error() || summary.Removed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !strings.Contains(buf.String(), "sheet refresh failed") {
		t.Fatalf("expected empty sheet to be logged, got %q", buf.String())
	}
}

func TestDirectoryService_RefreshErrors(t *testing.T) {
	svc := NewDirectoryService(&mockBusinessesRepository{}, WithServiceLogger(quietLogger()))
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrSourceNotConfigured) {
		t.Fatalf("expected ErrSourceNotConfigured, got %v", err)
	}

	svc = NewDirectoryService(&mockBusinessesRepository{},
		WithSource(&stubSource{businesses: []entity.Business{{Name: "A"}}}),
		WithServiceLogger(quietLogger()),
	)
	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatalf("expected repository error to surface")
	}
}

func TestDirectoryService_ImportCSV(t *testing.T) {
	var stored []entity.Business
	repo := &mockBusinessesRepository{
		replace: func(ctx context.Context, businesses []entity.Business) (repository.ReplaceResult, error) {
			stored = businesses
			return repository.ReplaceResult{Stored: len(businesses)}, nil
		},
	}
	svc := NewDirectoryService(repo, WithServiceLogger(quietLogger()))

	input := "Name,Address,Rating\n" +
		"\"Joe's \"\"Best\"\" Shop\",\"12 Elm St, Portland, ME 04101\",4.5\n" +
		",\"1 Nowhere Rd\",3.0\n"
	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Stored != 1 || summary.Dropped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if stored[0].Name != `Joe's "Best" Shop` || stored[0].City != "Portland" {
		t.Fatalf("unexpected stored record: %+v", stored[0])
	}
}

func TestDirectoryService_ImportCSVValidation(t *testing.T) {
	svc := NewDirectoryService(&mockBusinessesRepository{}, WithServiceLogger(quietLogger()))

	tests := map[string]string{
		"empty":       "  \n",
		"header only": "name,address\n",
		"no names":    "name,address\n,1 Main St\nN/A,2 Main St\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
			var validationErr CSVValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected CSVValidationError, got %v", err)
			}
		})
	}
}

func TestDirectoryService_ListBusinesses_AppliesDefaults(t *testing.T) {
	var received dto.ListFilter
	repo := &mockBusinessesRepository{
		list: func(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
			received = filter
			return []entity.Business{{Name: "Acme"}}, nil
		},
	}
	svc := NewDirectoryService(repo)

	result, err := svc.ListBusinesses(context.Background(), dto.ListFilter{Page: -1, PerPage: 500, Unit: "parsecs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.Page != 1 || received.PerPage != 100 || received.Unit != dto.UnitKilometers {
		t.Fatalf("unexpected filter passed to repo: %+v", received)
	}
	if result.Total != 1 || len(result.Items) != 1 || result.Items[0].Distance != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDirectoryService_ListBusinesses_Pagination(t *testing.T) {
	businesses := make([]entity.Business, 45)
	for i := range businesses {
		businesses[i] = entity.Business{Name: string(rune('A' + i%26))}
	}
	repo := &mockBusinessesRepository{
		list: func(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
			return businesses, nil
		},
	}
	svc := NewDirectoryService(repo)

	result, err := svc.ListBusinesses(context.Background(), dto.ListFilter{Page: 3, PerPage: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 45 || len(result.Items) != 5 {
		t.Fatalf("expected last page of 5 out of 45, got %d of %d", len(result.Items), result.Total)
	}

	result, _ = svc.ListBusinesses(context.Background(), dto.ListFilter{Page: 9})
	if len(result.Items) != 0 || result.Items == nil {
		t.Fatalf("expected empty, non-nil page beyond the end")
	}

	for _, page := range []int{3, math.MaxInt64, math.MaxInt64 / 20} {
		result, err = svc.ListBusinesses(context.Background(), dto.ListFilter{Page: page, PerPage: 20})
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", page, err)
		}
		if page != 3 && len(result.Items) != 0 {
			t.Fatalf("page %d: expected empty page, got %d items", page, len(result.Items))
		}
		if result.Total != 45 || result.Page != page {
			t.Fatalf("page %d: unexpected result: total=%d page=%d", page, result.Total, result.Page)
		}
	}
}

func TestDirectoryService_ListBusinesses_Proximity(t *testing.T) {
	kennebunk := geo.Coordinate{Lat: 43.3840, Lon: -70.5445}
	repo := &mockBusinessesRepository{
		list: func(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
			return []entity.Business{
				{Name: "Bangor", Location: &geo.Coordinate{Lat: 44.8016, Lon: -68.7712}},
				{Name: "Unlocated"},
				{Name: "Portland", Location: &geo.Coordinate{Lat: 43.6591, Lon: -70.2568}},
				{Name: "Kennebunk", Location: &kennebunk},
			}, nil
		},
	}
	svc := NewDirectoryService(repo)

	result, err := svc.ListBusinesses(context.Background(), dto.ListFilter{Near: &kennebunk, Unit: dto.UnitMiles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	if strings.Join(names, ",") != "Kennebunk,Portland,Bangor,Unlocated" {
		t.Fatalf("unexpected order: %v", names)
	}
	if d := result.Items[0].Distance; d == nil || *d != 0 || result.Items[0].Unit != dto.UnitMiles {
		t.Fatalf("expected zero miles for origin, got %+v", result.Items[0])
	}
	portlandKm := geo.DistanceKm(kennebunk.Lat, kennebunk.Lon, 43.6591, -70.2568)
	if d := *result.Items[1].Distance; d < geo.KmToMiles(portlandKm)-0.01 || d > geo.KmToMiles(portlandKm)+0.01 {
		t.Fatalf("expected distance in miles, got %v", d)
	}
	if result.Items[3].Distance != nil {
		t.Fatalf("expected no distance for unlocated record")
	}

	result, _ = svc.ListBusinesses(context.Background(), dto.ListFilter{Near: &kennebunk, RadiusKm: 50})
	if result.Total != 2 || result.Items[0].Name != "Kennebunk" || result.Items[1].Name != "Portland" {
		t.Fatalf("expected radius to keep the two nearby records, got %+v", result.Items)
	}
	if result.Items[1].Unit != dto.UnitKilometers {
		t.Fatalf("expected default unit km, got %q", result.Items[1].Unit)
	}
}

func TestDirectoryService_ListBusinesses_Error(t *testing.T) {
	svc := NewDirectoryService(&mockBusinessesRepository{})
	if _, err := svc.ListBusinesses(context.Background(), dto.ListFilter{}); err == nil {
		t.Fatalf("expected repository error")
	}
}

func TestDirectoryService_Cities(t *testing.T) {
	repo := &mockBusinessesRepository{
		list: func(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
			return []entity.Business{
				{Name: "a", City: "Saco"},
				{Name: "b", City: "portland"},
				{Name: "c", City: "Portland"},
				{Name: "d", City: ""},
				{Name: "e", City: "Biddeford"},
			}, nil
		},
	}
	cities, err := NewDirectoryService(repo).Cities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(cities, ",") != "Biddeford,portland,Saco" {
		t.Fatalf("unexpected cities: %v", cities)
	}
}
