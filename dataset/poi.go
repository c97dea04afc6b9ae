package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "github.com/lib/pq"

	"github.com/phanxgames/geodrill"
)

// FilterPOIs returns the records belonging to region, compared by
// administrative name.
func FilterPOIs(all []geodrill.PointOfInterest, region string) []geodrill.PointOfInterest {
	var out []geodrill.PointOfInterest
	for _, p := range all {
		if p.Region == region || geodrill.FuzzyNameEqual(p.Region, region) {
			out = append(out, p)
		}
	}
	return out
}

// POIList serves points of interest from memory.
type POIList []geodrill.PointOfInterest

// PointsOfInterest implements geodrill.POISource.
func (l POIList) PointsOfInterest(_ context.Context, region string) ([]geodrill.PointOfInterest, error) {
	return FilterPOIs(l, region), nil
}

// JSONPOISource reads a JSON array of records from Path once.
type JSONPOISource struct {
	Path string

	once sync.Once
	all  []geodrill.PointOfInterest
	err  error
}

// NewJSONPOISource creates a source reading path on first use.
func NewJSONPOISource(path string) *JSONPOISource {
	return &JSONPOISource{Path: path}
}

// All returns every record in the file.
func (s *JSONPOISource) All() ([]geodrill.PointOfInterest, error) {
	s.once.Do(func() {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			s.err = fmt.Errorf("dataset: read poi file: %w", err)
			return
		}
		if err := json.Unmarshal(data, &s.all); err != nil {
			s.err = fmt.Errorf("dataset: decode poi file %s: %w", s.Path, err)
		}
	})
	return s.all, s.err
}

// PointsOfInterest implements geodrill.POISource.
func (s *JSONPOISource) PointsOfInterest(_ context.Context, region string) ([]geodrill.PointOfInterest, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	return FilterPOIs(all, region), nil
}

// OpenPostgres opens a pooled connection to dsn.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	return db, nil
}

// DefaultPOITable is the table PostgresPOISource reads.
const DefaultPOITable = "scenic_spots"

// PostgresPOISource reads records from a table with columns name, city,
// county, level and type.
type PostgresPOISource struct {
	DB    *sql.DB
	Table string
}

// NewPostgresPOISource reads from DefaultPOITable on db.
func NewPostgresPOISource(db *sql.DB) *PostgresPOISource {
	return &PostgresPOISource{DB: db, Table: DefaultPOITable}
}

// PointsOfInterest implements geodrill.POISource.
func (s *PostgresPOISource) PointsOfInterest(ctx context.Context, region string) ([]geodrill.PointOfInterest, error) {
	q := fmt.Sprintf(`SELECT name, city, county, level, COALESCE(type, '') FROM %s
WHERE city = $1 OR $1 LIKE city || '%%' OR city LIKE $1 || '%%'
ORDER BY county, name`, s.table())
	return s.query(ctx, q, region)
}

func (s *PostgresPOISource) query(ctx context.Context, q string, args ...any) ([]geodrill.PointOfInterest, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("dataset: query points of interest: %w", err)
	}
	defer rows.Close()

	var out []geodrill.PointOfInterest
	for rows.Next() {
		var p geodrill.PointOfInterest
		if err := rows.Scan(&p.Name, &p.Region, &p.SubRegion, &p.Grade, &p.Kind); err != nil {
			return nil, fmt.Errorf("dataset: scan point of interest: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresPOISource) table() string {
	if s.Table == "" {
		return DefaultPOITable
	}
	return s.Table
}

// All returns every record in the table.
func (s *PostgresPOISource) All(ctx context.Context) ([]geodrill.PointOfInterest, error) {
	q := fmt.Sprintf(`SELECT name, city, county, level, COALESCE(type, '') FROM %s ORDER BY city, county, name`, s.table())
	return s.query(ctx, q)
}
