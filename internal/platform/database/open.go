package database

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

var queryWhitespace = regexp.MustCompile(`\s+`)

type Options struct {
	URL                         string
	DisablePreparedBinaryResult bool
	MaxOpenConns                int
	PingTimeout                 time.Duration
}

// Open connects to Postgres through an otel-instrumented sqlx handle and pings it.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("database url is required")
	}
	dsn := NormalizeURL(opts.URL, opts.DisablePreparedBinaryResult)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(NameFromURL(dsn)),
		otelsql.WithQueryFormatter(FormatQueryForTrace),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// FormatQueryForTrace collapses whitespace and truncates long statements for span attributes.
func FormatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespace.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
