package leveldb

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/riskibarqy/matchcenter/internal/domain/preference"
)

const keyPrefix = "pref:"

// PreferenceStore keeps preferences in an embedded LevelDB so they survive restarts
// without a database server.
type PreferenceStore struct {
	db *leveldb.DB
}

func OpenPreferenceStore(path string) (*PreferenceStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb at %s", path)
	}
	return &PreferenceStore{db: db}, nil
}

func (s *PreferenceStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := s.db.Get(storageKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, preference.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get preference %s", key)
	}
	return value, nil
}

func (s *PreferenceStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Put(storageKey(key), value, nil); err != nil {
		return errors.Wrapf(err, "put preference %s", key)
	}
	return nil
}

func (s *PreferenceStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete(storageKey(key), nil); err != nil {
		return errors.Wrapf(err, "delete preference %s", key)
	}
	return nil
}

func (s *PreferenceStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	it := s.db.NewIterator(util.BytesPrefix(storageKey(prefix)), nil)
	defer it.Release()

	keys := make([]string, 0)
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keys = append(keys, string(it.Key()[len(keyPrefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate preferences")
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

func storageKey(key string) []byte {
	return []byte(keyPrefix + key)
}
