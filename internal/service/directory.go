package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
	"github.com/majorossy/phreshfoods.com-sub003/internal/repository"
	"github.com/majorossy/phreshfoods.com-sub003/internal/sheet"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxUploadBytes = 10 << 20
)

// ErrSourceNotConfigured is returned by Refresh when no sheet source is wired.
var ErrSourceNotConfigured = errors.New("sheet source is not configured")

// ErrEmptySheet is reported when the upstream sheet yields no named businesses.
var ErrEmptySheet = errors.New("sheet returned no named businesses")

// CSVValidationError indicates that the provided CSV payload is unusable.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// RefreshSummary reports the outcome of a sheet synchronisation.
type RefreshSummary struct {
	Fetched     int    `json:"fetched"`
	Stored      int    `json:"stored"`
	Removed     int    `json:"removed"`
	SourceError string `json:"source_error,omitempty"`
}

// UploadSummary reports the outcome of an uploaded CSV import.
type UploadSummary struct {
	Stored  int `json:"stored"`
	Removed int `json:"removed"`
	Dropped int `json:"dropped"`
}

// DirectoryService exposes read/write operations for the business directory.
type DirectoryService struct {
	repo       repository.BusinessesRepository
	source     sheet.Source
	normalizer *Normalizer
	logger     *log.Logger
}

// DirectoryOption configures optional dependencies.
type DirectoryOption func(*DirectoryService)

// WithSource wires the upstream sheet used by Refresh.
func WithSource(source sheet.Source) DirectoryOption {
	return func(s *DirectoryService) {
		s.source = source
	}
}

// WithNormalizer overrides the default contact normalizer.
func WithNormalizer(n *Normalizer) DirectoryOption {
	return func(s *DirectoryService) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithServiceLogger overrides the logger used for refresh failures and parse warnings.
func WithServiceLogger(logger *log.Logger) DirectoryOption {
	return func(s *DirectoryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewDirectoryService creates a new instance of DirectoryService.
func NewDirectoryService(repo repository.BusinessesRepository, opts ...DirectoryOption) *DirectoryService {
	s := &DirectoryService{
		repo:       repo,
		normalizer: NewNormalizer(defaultPhoneRegion),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh pulls the upstream sheet and replaces the stored snapshot. A failed
// or empty fetch is logged and reported in the summary while the snapshot is
// left in place.
func (s *DirectoryService) Refresh(ctx context.Context) (RefreshSummary, error) {
	if s.source == nil {
		return RefreshSummary{}, ErrSourceNotConfigured
	}

	businesses, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Printf("sheet refresh failed: %v", err)
		return RefreshSummary{SourceError: err.Error()}, nil
	}
	if len(businesses) == 0 {
		s.logger.Printf("sheet refresh failed: %v", ErrEmptySheet)
		return RefreshSummary{SourceError: ErrEmptySheet.Error()}, nil
	}

	result, err := s.repo.ReplaceAll(ctx, s.normalizer.ApplyAll(businesses))
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("store refreshed businesses: %w", err)
	}

	s.logger.Printf("sheet refresh complete fetched=%d stored=%d removed=%d", len(businesses), result.Stored, result.Removed)
	return RefreshSummary{
		Fetched: len(businesses),
		Stored:  result.Stored,
		Removed: result.Removed,
	}, nil
}

// ImportCSV replaces the directory with the contents of an uploaded CSV.
func (s *DirectoryService) ImportCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return UploadSummary{}, fmt.Errorf("read csv upload: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return UploadSummary{}, CSVValidationError{Message: "csv file is empty"}
	}

	dropped := 0
	parser := sheet.NewParser(
		sheet.WithLogger(s.logger),
		sheet.WithDiagnostics(func(d sheet.Diagnostic) {
			if d.Kind == sheet.DiagnosticDroppedRow {
				dropped++
			}
		}),
	)

	businesses := parser.Parse(string(data))
	if len(businesses) == 0 {
		return UploadSummary{}, CSVValidationError{Message: "csv contains no named businesses"}
	}

	result, err := s.repo.ReplaceAll(ctx, s.normalizer.ApplyAll(businesses))
	if err != nil {
		return UploadSummary{}, err
	}

	return UploadSummary{
		Stored:  result.Stored,
		Removed: result.Removed,
		Dropped: dropped,
	}, nil
}

// ListBusinesses returns a page of listings. When filter.Near is set, results
// carry a distance in the requested unit, are limited to filter.RadiusKm when
// positive, and are ordered nearest first with unlocated records last.
func (s *DirectoryService) ListBusinesses(ctx context.Context, filter dto.ListFilter) (dto.ListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}
	if filter.Unit != dto.UnitMiles {
		filter.Unit = dto.UnitKilometers
	}

	businesses, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ListResult{}, err
	}

	listings := rankByDistance(businesses, filter)

	result := dto.ListResult{
		Items:   []entity.Listing{},
		Total:   len(listings),
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}
	pages := (len(listings) + filter.PerPage - 1) / filter.PerPage
	if filter.Page <= pages {
		start := (filter.Page - 1) * filter.PerPage
		end := min(start+filter.PerPage, len(listings))
		result.Items = listings[start:end]
	}
	return result, nil
}

// Cities returns the distinct derived city names in alphabetical order.
func (s *DirectoryService) Cities(ctx context.Context) ([]string, error) {
	businesses, err := s.repo.List(ctx, dto.ListFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for _, b := range businesses {
		city := strings.TrimSpace(b.City)
		if city == "" {
			continue
		}
		key := strings.ToLower(city)
		if _, ok := seen[key]; !ok {
			seen[key] = city
		}
	}

	cities := make([]string, 0, len(seen))
	for _, city := range seen {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool {
		return strings.ToLower(cities[i]) < strings.ToLower(cities[j])
	})
	return cities, nil
}

// All returns every stored business in sheet order.
func (s *DirectoryService) All(ctx context.Context) ([]entity.Business, error) {
	return s.repo.List(ctx, dto.ListFilter{})
}

func rankByDistance(businesses []entity.Business, filter dto.ListFilter) []entity.Listing {
	listings := make([]entity.Listing, 0, len(businesses))
	if filter.Near == nil {
		for _, b := range businesses {
			listings = append(listings, entity.Listing{Business: b})
		}
		return listings
	}

	origin := *filter.Near
	kms := make(map[int]float64, len(businesses))
	for _, b := range businesses {
		if b.Location == nil {
			if filter.RadiusKm > 0 {
				continue
			}
			listings = append(listings, entity.Listing{Business: b})
			continue
		}

		km := geo.DistanceKm(origin.Lat, origin.Lon, b.Location.Lat, b.Location.Lon)
		if filter.RadiusKm > 0 && km > filter.RadiusKm {
			continue
		}
		distance := km
		if filter.Unit == dto.UnitMiles {
			distance = geo.KmToMiles(km)
		}
		distance = math.Round(distance*100) / 100
		kms[len(listings)] = km
		listings = append(listings, entity.Listing{Business: b, Distance: &distance, Unit: filter.Unit})
	}

	order := make([]int, len(listings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ki, iok := kms[order[i]]
		kj, jok := kms[order[j]]
		if iok != jok {
			return iok
		}
		return iok && ki < kj
	})

	ranked := make([]entity.Listing, len(listings))
	for i, idx := range order {
		ranked[i] = listings[idx]
	}
	return ranked
}
