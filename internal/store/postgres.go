package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventoscl/crawler/internal/events"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool used for event rows.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresGateway persists event records in Postgres.
type PostgresGateway struct {
	pool  pgxPool
	table string
	clock events.Clock
}

// NewPostgresGateway creates a Postgres-backed Gateway using the provided config.
func NewPostgresGateway(ctx context.Context, cfg PostgresConfig, clock events.Clock) (*PostgresGateway, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "events_v2"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresGateway{pool: pool, table: table, clock: clock}, nil
}

// NewPostgresGatewayWithPool constructs a gateway from an existing pool
// (primarily for testing).
func NewPostgresGatewayWithPool(pool pgxPool, table string, clock events.Clock) (*PostgresGateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "events_v2"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresGateway{pool: pool, table: table, clock: clock}, nil
}

// Close releases the underlying pool resources.
func (g *PostgresGateway) Close() {
	if g == nil || g.pool == nil {
		return
	}
	g.pool.Close()
}

// LookupKnownExternalIDs fetches the external IDs stored for source whose
// start date is at or after notBefore.
func (g *PostgresGateway) LookupKnownExternalIDs(ctx context.Context, source string, notBefore time.Time) (map[string]struct{}, error) {
	query := fmt.Sprintf(
		`SELECT external_id FROM %s WHERE source = $1 AND start_date >= $2`, g.table)
	rows, err := g.pool.Query(ctx, query, source, notBefore)
	if err != nil {
		return nil, fmt.Errorf("query known external ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan external id: %w", err)
		}
		known[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known external ids: %w", err)
	}
	return known, nil
}

// Upsert inserts or refreshes the row for (external_id, source). Both
// updated_at and scraped_at are set to the write time on every call.
func (g *PostgresGateway) Upsert(ctx context.Context, record events.EventRecord) (events.EventRecord, error) {
	if record.ExternalID == "" || record.Source == "" {
		return events.EventRecord{}, fmt.Errorf("record must carry external_id and source")
	}

	occurrencesJSON, err := marshalNullable(record.EventOccurrences, len(record.EventOccurrences) == 0)
	if err != nil {
		return events.EventRecord{}, fmt.Errorf("marshal occurrences: %w", err)
	}
	imagesJSON, err := marshalNullable(record.Images, len(record.Images) == 0)
	if err != nil {
		return events.EventRecord{}, fmt.Errorf("marshal images: %w", err)
	}
	rawJSON, err := json.Marshal(record.RawData)
	if err != nil {
		return events.EventRecord{}, fmt.Errorf("marshal raw data: %w", err)
	}

	now := g.clock.Now()
	query := fmt.Sprintf(`
INSERT INTO %s (
	external_id, source, source_url,
	title, description, long_description,
	start_date, end_date, event_occurrences,
	venue, address, comuna, location,
	image_url, images,
	category_original, category_english,
	price, price_min, price_max, currency,
	homepage_url, ticket_url,
	validation_status, scrape_version, raw_data,
	updated_at, scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28
)
ON CONFLICT (external_id, source) DO UPDATE SET
	source_url = EXCLUDED.source_url,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	long_description = EXCLUDED.long_description,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	event_occurrences = EXCLUDED.event_occurrences,
	venue = EXCLUDED.venue,
	address = EXCLUDED.address,
	comuna = EXCLUDED.comuna,
	location = EXCLUDED.location,
	image_url = EXCLUDED.image_url,
	images = EXCLUDED.images,
	category_original = EXCLUDED.category_original,
	category_english = EXCLUDED.category_english,
	price = EXCLUDED.price,
	price_min = EXCLUDED.price_min,
	price_max = EXCLUDED.price_max,
	currency = EXCLUDED.currency,
	homepage_url = EXCLUDED.homepage_url,
	ticket_url = EXCLUDED.ticket_url,
	validation_status = EXCLUDED.validation_status,
	scrape_version = EXCLUDED.scrape_version,
	raw_data = EXCLUDED.raw_data,
	updated_at = EXCLUDED.updated_at,
	scraped_at = EXCLUDED.scraped_at`, g.table)

	args := []any{
		record.ExternalID, record.Source, nullString(record.SourceURL),
		nullString(record.Title), nullString(record.Description), nullString(record.LongDescription),
		record.StartDate, record.EndDate, occurrencesJSON,
		nullString(record.Venue), nullString(record.Address), nullString(record.Comuna), nullString(record.Location),
		nullString(record.ImageURL), imagesJSON,
		nullString(record.CategoryOriginal), nullString(record.CategoryEnglish),
		nullString(record.Price), record.PriceMin, record.PriceMax, record.Currency,
		nullString(record.HomepageURL), nullString(record.TicketURL),
		record.ValidationStatus, record.ScrapeVersion, rawJSON,
		now, now,
	}
	if _, err := g.pool.Exec(ctx, query, args...); err != nil {
		return events.EventRecord{}, fmt.Errorf("upsert event: %w", err)
	}
	return record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalNullable(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
