// Package ledger is the host ledger settlement runs against. It stores accounts, mints and token
// accounts in badger and executes every unit of work in a single read-write transaction, so a unit
// either commits all of its writes or none of them.
//
// Badger transactions are optimistic. When two units write keys the other has read, the later commit
// fails with badger.ErrConflict and Update runs the unit again against the new state. This is what
// turns account creation into a test-and-set: of all concurrent units creating the same address,
// exactly one commits and every other one re-runs and finds the address occupied.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

type Ledger struct {
	logger *zap.Logger
	db     *badger.DB
}

// NewLedger wraps an already opened badger database.
func NewLedger(logger *zap.Logger, dbConn *badger.DB) *Ledger {
	return &Ledger{
		logger: logger.Named("ledger"),
		db:     dbConn,
	}
}

// Open opens (creating it if needed) the ledger database under dataDir.
func Open(logger *zap.Logger, dataDir string) (*Ledger, error) {
	dbPath := path.Join(dataDir, "ledger")
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	return NewLedger(logger, db), nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// newConflictBackOff returns the retry policy for conflicting commits. Conflicts resolve as soon as the
// competing unit has committed, so the intervals are short.
func newConflictBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	return backoff.WithContext(bo, ctx)
}

// Update runs fn as one atomic unit of work. If fn returns an error nothing it wrote is persisted.
// fn may be invoked more than once when the commit conflicts with a concurrent unit, so it must not
// have side effects outside of tx other than overwriting its own results.
func (l *Ledger) Update(ctx context.Context, fn func(tx *Tx) error) error {
	attempt := 0
	conflicted := false
	op := func() error {
		attempt++
		tx := &Tx{}
		err := l.db.Update(func(txn *badger.Txn) error {
			tx.txn = txn
			return fn(tx)
		})
		conflicted = errors.Is(err, badger.ErrConflict)
		if conflicted {
			txnConflicts.Inc()
			l.logger.Debug("ledger transaction conflicted, retrying", zap.Int("attempt", attempt))
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		for _, kind := range tx.created {
			accountsCreated.WithLabelValues(kind.String()).Inc()
		}
		return nil
	}

	err := backoff.Retry(op, newConflictBackOff(ctx))
	if err != nil && conflicted {
		// The last attempt conflicted and no retries are left. err is the conflict or the context error.
		return fmt.Errorf("%w after %d attempts: %w", ErrContention, attempt, err)
	}
	return err
}

// View runs fn against a read-only snapshot of the ledger.
func (l *Ledger) View(fn func(tx *Tx) error) error {
	return l.db.View(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}
