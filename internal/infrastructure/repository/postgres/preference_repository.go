package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
	qb "github.com/riskibarqy/matchcenter/internal/platform/querybuilder"
)

type PreferenceRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db, now: time.Now}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := qb.Select("key", "value", "updated_at").
		From(preferencesTable).
		Where(qb.Eq("key", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get preference query: %w", err)
	}

	var row preferenceTableModel
	err = r.db.GetContext(ctx, &row, query, args...)
	if isUnnamedPreparedStatementMissing(err) {
		err = r.db.GetContext(ctx, &row, query, args...)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, preference.ErrNotFound
		}
		return nil, fmt.Errorf("get preference %s: %w", key, err)
	}
	return row.Value, nil
}

func (r *PreferenceRepository) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := qb.UpsertModel(preferencesTable, preferenceTableModel{
		Key:       key,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	}, "key")
	if err != nil {
		return fmt.Errorf("build upsert preference query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert preference %s: %w", key, err)
	}
	return nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	query, args, err := qb.DeleteFrom(preferencesTable).Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete preference query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, e.g. offline snapshots.
func (r *PreferenceRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := qb.Select("key").
		From(preferencesTable).
		Where(qb.HasPrefix("key", prefix)).
		OrderBy("key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list preference keys query: %w", err)
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("list preference keys: %w", err)
	}
	return keys, nil
}
