// Package tokens persists the API session: the access and refresh JWTs under
// the "token" and "refresh_token" metadata keys, sealed at rest.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/cryptox"
	"github.com/dmitrijs2005/expertconnect/internal/dbx"
)

// ErrNoExpiry is returned by ExpiresAt for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Store is the credential provider of the API client plus the writes the
// auth service performs. An empty string means no token.
type Store interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	// Save replaces both tokens atomically.
	Save(ctx context.Context, pair models.TokenPair) error
	SetAccess(ctx context.Context, access string) error
	// Clear removes both tokens atomically.
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the tokens in the metadata table. Writes are serialized
// and the decrypted pair is cached after the first read.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	sealer cryptox.Sealer

	loaded  bool
	access  string
	refresh string
}

func NewSQLiteStore(db *sql.DB, sealer cryptox.Sealer) *SQLiteStore {
	if sealer == nil {
		sealer = cryptox.PlainSealer{}
	}
	return &SQLiteStore{db: db, sealer: sealer}
}

func (s *SQLiteStore) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", err
	}
	return s.access, nil
}

func (s *SQLiteStore) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", err
	}
	return s.refresh, nil
}

func (s *SQLiteStore) Save(ctx context.Context, pair models.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, err := s.sealer.Seal([]byte(pair.Access))
	if err != nil {
		return fmt.Errorf("token seal error: %w", err)
	}
	refresh, err := s.sealer.Seal([]byte(pair.Refresh))
	if err != nil {
		return fmt.Errorf("token seal error: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, access); err != nil {
			return err
		}
		return repo.Set(ctx, common.RefreshTokenKey, refresh)
	})
	if err != nil {
		return fmt.Errorf("token save error: %w", err)
	}

	s.loaded, s.access, s.refresh = true, pair.Access, pair.Refresh
	return nil
}

func (s *SQLiteStore) SetAccess(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal([]byte(access))
	if err != nil {
		return fmt.Errorf("token seal error: %w", err)
	}
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, common.AccessTokenKey, sealed); err != nil {
		return fmt.Errorf("token save error: %w", err)
	}

	s.access = access
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey)
	})
	if err != nil {
		return fmt.Errorf("token clear error: %w", err)
	}

	s.loaded, s.access, s.refresh = true, "", ""
	return nil
}

// load reads both tokens once. The caller holds s.mu.
func (s *SQLiteStore) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	repo := metadata.NewSQLiteRepository(s.db)

	access, err := s.read(ctx, repo, common.AccessTokenKey)
	if err != nil {
		return err
	}
	refresh, err := s.read(ctx, repo, common.RefreshTokenKey)
	if err != nil {
		return err
	}

	s.loaded, s.access, s.refresh = true, access, refresh
	return nil
}

func (s *SQLiteStore) read(ctx context.Context, repo metadata.Repository, key string) (string, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("token load error: %w", err)
	}
	if raw == nil {
		return "", nil
	}

	plain, err := s.sealer.Open(raw)
	if err != nil {
		return "", fmt.Errorf("token open %s error: %w", key, err)
	}
	return string(plain), nil
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemory(pair models.TokenPair) *Memory {
	return &Memory{access: pair.Access, refresh: pair.Refresh}
}

func (m *Memory) AccessToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, nil
}

func (m *Memory) RefreshToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, nil
}

func (m *Memory) Save(_ context.Context, pair models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = pair.Access, pair.Refresh
	return nil
}

func (m *Memory) SetAccess(_ context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	return nil
}

// ExpiresAt reads the exp claim without verifying the signature. The client
// never holds the signing key; the server remains the judge of validity.
func ExpiresAt(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("token parse error: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
