package urlcheck

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// rateLimitKey marks an active Wayback deflection window. The entry carries
// a TTL so the flag clears itself; a rate-limit hit by one worker deflects
// every worker of the process until then.
var rateLimitKey = []byte("wayback:ratelimited")

// FlagStore is the process-shared signal cache backing the Wayback
// rate-limit flag. It persists across restarts.
type FlagStore struct {
	db *badger.DB
}

// OpenFlagStore opens (or creates) the badger-backed flag cache at path.
func OpenFlagStore(path string, logger *slog.Logger) (*FlagStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithValueLogFileSize(8 << 20)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("Flag cache opened", "path", path)
	}
	return &FlagStore{db: db}, nil
}

// Close closes the underlying database.
func (f *FlagStore) Close() error {
	return f.db.Close()
}

// SetRateLimited raises the Wayback deflection flag for the given interval.
func (f *FlagStore) SetRateLimited(d time.Duration) error {
	return f.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(rateLimitKey, []byte{1}).WithTTL(d)
		return txn.SetEntry(entry)
	})
}

// IsRateLimited reports whether the deflection flag is currently raised.
func (f *FlagStore) IsRateLimited() (bool, error) {
	var set bool
	err := f.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(rateLimitKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		set = true
		return nil
	})
	return set, err
}
