package sheet

import (
	"log"
	"strconv"
	"strings"

	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
)

// Column names recognised in the header row, compared after trim and lower-casing.
const (
	ColumnName       = "name"
	ColumnAddress    = "address"
	ColumnRating     = "rating"
	ColumnPhone      = "phone"
	ColumnWebsite    = "website"
	ColumnPlaceID    = "place id"
	ColumnLogo       = "logo"
	ColumnImageOne   = "image_one"
	ColumnImageTwo   = "image_two"
	ColumnImageThree = "image_three"
	ColumnTwitter    = "twitter"
	ColumnFacebook   = "facebook"
	ColumnInstagram  = "instagram"
)

var (
	essentialColumns = []string{ColumnName, ColumnAddress}
	latitudeColumns  = []string{"latitude", "lat"}
	longitudeColumns = []string{"longitude", "lng", "lon"}
)

// DiagnosticKind classifies a non-fatal parse event.
type DiagnosticKind string

const (
	DiagnosticMissingColumn DiagnosticKind = "missing_column"
	DiagnosticDroppedRow    DiagnosticKind = "dropped_row"
)

// Diagnostic describes a non-fatal parse event. Line is 1-based and zero for
// header level events.
type Diagnostic struct {
	Kind   DiagnosticKind
	Line   int
	Column string
}

// Parser converts published sheet CSV into directory records. A Parser holds
// no per-call state and may be shared between goroutines.
type Parser struct {
	logger      *log.Logger
	diagnostics func(Diagnostic)
}

// Option configures optional Parser behaviour.
type Option func(*Parser)

// WithLogger overrides the logger used for header warnings.
func WithLogger(logger *log.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDiagnostics registers a callback receiving missing columns and dropped rows.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(p *Parser) {
		p.diagnostics = fn
	}
}

// NewParser builds a parser logging to the standard logger unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: log.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse converts csvText using a parser with default options.
func Parse(csvText string) []entity.Business {
	return defaultParser.Parse(csvText)
}

// Parse converts raw CSV text into businesses, preserving row order. It never
// fails: text without data rows yields an empty slice and rows without a usable
// name are skipped.
func (p *Parser) Parse(csvText string) []entity.Business {
	lines := strings.Split(csvText, "\n")
	if len(lines) < 2 {
		return []entity.Business{}
	}

	index := p.buildHeaderIndex(Tokenize(strings.TrimSuffix(lines[0], "\r")))

	businesses := make([]entity.Business, 0, len(lines)-1)
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if business, ok := p.buildBusiness(index, Tokenize(line), i+2, cleanCell); ok {
			businesses = append(businesses, business)
		}
	}
	return businesses
}

// ParseRows converts pre-split rows, as returned by the Sheets API, into
// businesses. The first row is the header. Cells are raw values, so only
// surrounding whitespace is removed.
func (p *Parser) ParseRows(rows [][]string) []entity.Business {
	if len(rows) < 2 {
		return []entity.Business{}
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}
	index := p.buildHeaderIndex(header)

	businesses := make([]entity.Business, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if business, ok := p.buildBusiness(index, row, i+2, strings.TrimSpace); ok {
			businesses = append(businesses, business)
		}
	}
	return businesses
}

type headerIndex map[string]int

func (h headerIndex) lookup(name string) int {
	if idx, ok := h[name]; ok {
		return idx
	}
	return -1
}

func (h headerIndex) first(names []string) int {
	for _, name := range names {
		if idx := h.lookup(name); idx >= 0 {
			return idx
		}
	}
	return -1
}

func (p *Parser) buildHeaderIndex(header []string) headerIndex {
	index := make(headerIndex, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for _, col := range essentialColumns {
		if index.lookup(col) < 0 {
			p.logger.Printf("csv header missing essential column=%q", col)
			p.report(Diagnostic{Kind: DiagnosticMissingColumn, Column: col})
		}
	}
	return index
}

func (p *Parser) buildBusiness(index headerIndex, row []string, line int, clean func(string) string) (entity.Business, bool) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return clean(row[idx])
	}
	field := func(name string) string {
		return cell(index.lookup(name))
	}

	business := entity.Business{
		Name:       orNotAvailable(field(ColumnName)),
		Address:    orNotAvailable(field(ColumnAddress)),
		Rating:     orNotAvailable(field(ColumnRating)),
		Phone:      field(ColumnPhone),
		Website:    field(ColumnWebsite),
		PlaceID:    field(ColumnPlaceID),
		Logo:       field(ColumnLogo),
		ImageOne:   field(ColumnImageOne),
		ImageTwo:   field(ColumnImageTwo),
		ImageThree: field(ColumnImageThree),
		Twitter:    field(ColumnTwitter),
		Facebook:   field(ColumnFacebook),
		Instagram:  field(ColumnInstagram),
	}
	business.City = DeriveCity(business.Address)
	business.Location = parseLocation(cell(index.first(latitudeColumns)), cell(index.first(longitudeColumns)))

	if business.Name == "" || business.Name == entity.NotAvailable {
		p.report(Diagnostic{Kind: DiagnosticDroppedRow, Line: line, Column: ColumnName})
		return entity.Business{}, false
	}
	return business, true
}

func (p *Parser) report(d Diagnostic) {
	if p.diagnostics != nil {
		p.diagnostics(d)
	}
}

func orNotAvailable(value string) string {
	if value == "" {
		return entity.NotAvailable
	}
	return value
}

func parseLocation(latRaw, lonRaw string) *geo.Coordinate {
	if latRaw == "" || lonRaw == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil
	}
	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return nil
	}
	return &coord
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
