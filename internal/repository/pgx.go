package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXBusinessesRepository implements BusinessesRepository using pgx.
type PGXBusinessesRepository struct {
	pool pgxPool
}

// NewPGXBusinessesRepository wires a pgx backed repository.
func NewPGXBusinessesRepository(pool *pgxpool.Pool) *PGXBusinessesRepository {
	return &PGXBusinessesRepository{pool: pool}
}

const schemaSQL = `
        CREATE TABLE IF NOT EXISTS businesses (
            position     INTEGER PRIMARY KEY,
            name         TEXT NOT NULL,
            address      TEXT NOT NULL,
            city         TEXT NOT NULL DEFAULT '',
            rating       TEXT NOT NULL,
            phone        TEXT NOT NULL DEFAULT '',
            phone_e164   TEXT NOT NULL DEFAULT '',
            website      TEXT NOT NULL DEFAULT '',
            website_url  TEXT NOT NULL DEFAULT '',
            place_id     TEXT NOT NULL DEFAULT '',
            logo         TEXT NOT NULL DEFAULT '',
            image_one    TEXT NOT NULL DEFAULT '',
            image_two    TEXT NOT NULL DEFAULT '',
            image_three  TEXT NOT NULL DEFAULT '',
            twitter      TEXT NOT NULL DEFAULT '',
            facebook     TEXT NOT NULL DEFAULT '',
            instagram    TEXT NOT NULL DEFAULT '',
            latitude     DOUBLE PRECISION,
            longitude    DOUBLE PRECISION,
            updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS businesses_city_idx ON businesses (LOWER(city));
    `

// EnsureSchema creates the businesses table when it does not exist yet.
func (r *PGXBusinessesRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure businesses schema: %w", err)
	}
	return nil
}

var copyColumns = []string{
	"position",
	"name",
	"address",
	"city",
	"rating",
	"phone",
	"phone_e164",
	"website",
	"website_url",
	"place_id",
	"logo",
	"image_one",
	"image_two",
	"image_three",
	"twitter",
	"facebook",
	"instagram",
	"latitude",
	"longitude",
}

// ReplaceAll swaps the stored snapshot inside a single transaction.
func (r *PGXBusinessesRepository) ReplaceAll(ctx context.Context, businesses []entity.Business) (ReplaceResult, error) {
	var result ReplaceResult

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM businesses")
	if err != nil {
		return result, fmt.Errorf("clear businesses: %w", err)
	}
	result.Removed = int(tag.RowsAffected())

	if len(businesses) > 0 {
		rows := make([][]any, 0, len(businesses))
		for i, b := range businesses {
			rows = append(rows, businessRow(i, b))
		}
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"businesses"}, copyColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return result, fmt.Errorf("copy businesses: %w", err)
		}
		result.Stored = int(copied)
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit replace tx: %w", err)
	}
	return result, nil
}

func businessRow(position int, b entity.Business) []any {
	var lat, lng any
	if b.Location != nil {
		lat = b.Location.Lat
		lng = b.Location.Lon
	}
	return []any{
		position,
		b.Name,
		b.Address,
		b.City,
		b.Rating,
		b.Phone,
		b.PhoneE164,
		b.Website,
		b.WebsiteURL,
		b.PlaceID,
		b.Logo,
		b.ImageOne,
		b.ImageTwo,
		b.ImageThree,
		b.Twitter,
		b.Facebook,
		b.Instagram,
		lat,
		lng,
	}
}

// List retrieves businesses matching the text filters in sheet order.
func (r *PGXBusinessesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
	query := strings.Builder{}
	query.WriteString(`
        SELECT
            name,
            address,
            city,
            rating,
            phone,
            phone_e164,
            website,
            website_url,
            place_id,
            logo,
            image_one,
            image_two,
            image_three,
            twitter,
            facebook,
            instagram,
            latitude,
            longitude
        FROM businesses
    `)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if q := strings.TrimSpace(filter.Q); q != "" {
		pattern := fmt.Sprintf("%%%s%%", q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, city)
		idx++
	}

	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}
	query.WriteString(" ORDER BY position ASC")

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

func scanBusinesses(rows pgx.Rows) ([]entity.Business, error) {
	businesses := make([]entity.Business, 0)
	for rows.Next() {
		var (
			b         entity.Business
			latitude  sql.NullFloat64
			longitude sql.NullFloat64
		)

		err := rows.Scan(
			&b.Name,
			&b.Address,
			&b.City,
			&b.Rating,
			&b.Phone,
			&b.PhoneE164,
			&b.Website,
			&b.WebsiteURL,
			&b.PlaceID,
			&b.Logo,
			&b.ImageOne,
			&b.ImageTwo,
			&b.ImageThree,
			&b.Twitter,
			&b.Facebook,
			&b.Instagram,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}

		if latitude.Valid && longitude.Valid {
			b.Location = &geo.Coordinate{Lat: latitude.Float64, Lon: longitude.Float64}
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate businesses: %w", err)
	}
	return businesses, nil
}

var _ BusinessesRepository = (*PGXBusinessesRepository)(nil)
