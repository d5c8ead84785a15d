package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Ledger operations

func (s *Storage) SaveAccountLedger(ctx context.Context, ledger *model.AccountLedger) error {
	key := ledgerKey(ledger.Email)

	saved := *ledger
	saved.Email = model.NormalizeEmail(ledger.Email)
	saved.Version = ledger.Version + 1

	data, err := json.Marshal(&saved)
	if err != nil {
		return err
	}

	// WATCH-based compare-and-swap on the stored Version so concurrent
	// read-modify-write cycles cannot silently clobber each other
	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if ledger.Version != 0 {
				return model.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var stored model.AccountLedger
			if jsonErr := json.Unmarshal(current, &stored); jsonErr != nil {
				// Unreadable stored ledger: only a freshly
				// initialized ledger may replace it
				if ledger.Version != 0 {
					return fmt.Errorf("%w: %w", model.ErrCorruptDocument, jsonErr)
				}
			} else if stored.Version != ledger.Version {
				return model.ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return model.ErrVersionConflict
		}
		return err
	}

	ledger.Version = saved.Version
	return nil
}

func (s *Storage) GetAccountLedger(ctx context.Context, email string) (*model.AccountLedger, error) {
	data, err := s.client.Get(ctx, ledgerKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLedgerNotFound
		}
		return nil, err
	}

	var ledger model.AccountLedger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return &ledger, nil
}

// Notes operations

func (s *Storage) SaveNotes(ctx context.Context, email, notes string) error {
	return s.client.Set(ctx, notesKey(email), notes, 0).Err()
}

func (s *Storage) GetNotes(ctx context.Context, email string) (string, error) {
	notes, err := s.client.Get(ctx, notesKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNotesNotFound
		}
		return "", err
	}
	return notes, nil
}

// Preference operations

func (s *Storage) SavePreferences(ctx context.Context, email string, prefs map[string]bool) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, prefsKey(email), data, 0).Err()
}

func (s *Storage) GetPreferences(ctx context.Context, email string) (map[string]bool, error) {
	data, err := s.client.Get(ctx, prefsKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPrefsNotFound
		}
		return nil, err
	}

	var prefs map[string]bool
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCorruptDocument, err)
	}
	return prefs, nil
}
