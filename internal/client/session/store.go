package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/matchline/tournops/internal/client/models"
	"github.com/matchline/tournops/internal/client/repositories/keystore"
	"github.com/matchline/tournops/internal/dbx"
	"github.com/matchline/tournops/internal/logging"
)

// Durable storage keys. Always written together on login and removed
// together on logout or invalid hydration.
const (
	KeyUser         = "user"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// ErrStale is returned by LoginAt when the session generation moved while
// the login request was in flight (typically an explicit logout).
var ErrStale = errors.New("stale session write")

// Snapshot is an immutable view of the session handed to subscribers.
type Snapshot struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Generation      uint64
}

// Store is the process-wide session holder. Construct one per process and
// mutate it only through the documented operations.
type Store struct {
	db  *sql.DB
	log logging.Logger

	mu           sync.Mutex
	user         *models.User
	accessToken  string
	refreshToken string
	loading      bool
	generation   uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	return &Store{
		db:      db,
		log:     log.With("component", "session"),
		loading: true,
		subs:    make(map[int]func(Snapshot)),
	}
}

func (s *Store) repo(tx dbx.DBTX) keystore.Repository {
	return keystore.NewSQLiteRepository(tx)
}

// Subscribe registers fn to be called with a snapshot after every committed
// mutation. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		User:            s.user.Clone(),
		IsAuthenticated: s.user != nil && s.accessToken != "" && s.refreshToken != "",
		IsLoading:       s.loading,
		Generation:      s.generation,
	}
}

// Snapshot returns the current derived session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentUser returns a copy of the current user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Generation returns the current session generation. Capture it before an
// asynchronous login and pass it to LoginAt.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken implements api.TokenSource.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Hydrate loads the persisted triple once at process start. When all three
// keys parse, the session becomes authenticated; any missing or corrupt key
// clears all three so a partial triple can never survive. Either way the
// store leaves the loading state before returning.
func (s *Store) Hydrate(ctx context.Context) error {
	user, access, refresh, ok := s.readTriple(ctx)

	var clearErr error
	if !ok {
		// Fail safe: wipe whatever partial state is on disk.
		clearErr = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repo(tx).Clear(ctx)
		})
	}

	s.mu.Lock()
	if ok {
		s.user = user
		s.accessToken = access
		s.refreshToken = refresh
	} else {
		s.user = nil
		s.accessToken = ""
		s.refreshToken = ""
	}
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return clearErr
}

func (s *Store) readTriple(ctx context.Context) (*models.User, string, string, bool) {
	repo := s.repo(s.db)

	rawUser, err := repo.Get(ctx, KeyUser)
	if err != nil || len(rawUser) == 0 {
		return nil, "", "", false
	}
	access, err := repo.Get(ctx, KeyAccessToken)
	if err != nil || len(access) == 0 {
		return nil, "", "", false
	}
	refresh, err := repo.Get(ctx, KeyRefreshToken)
	if err != nil || len(refresh) == 0 {
		return nil, "", "", false
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Warn(ctx, "discarding corrupt persisted user", "error", err)
		return nil, "", "", false
	}
	if user.ID == "" {
		return nil, "", "", false
	}
	return &user, string(access), string(refresh), true
}

// Login atomically replaces the session triple, overwriting any prior one.
func (s *Store) Login(ctx context.Context, user *models.User, accessToken, refreshToken string) error {
	return s.login(ctx, user, accessToken, refreshToken, nil)
}

// LoginAt is Login guarded by a generation: the write only applies when the
// session generation still equals gen. Otherwise ErrStale is returned and
// nothing changes.
func (s *Store) LoginAt(ctx context.Context, gen uint64, user *models.User, accessToken, refreshToken string) error {
	return s.login(ctx, user, accessToken, refreshToken, &gen)
}

func (s *Store) login(ctx context.Context, user *models.User, accessToken, refreshToken string, gen *uint64) error {
	if user == nil || user.ID == "" || accessToken == "" || refreshToken == "" {
		return errors.New("session: incomplete login triple")
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()

	if gen != nil && s.generation != *gen {
		s.mu.Unlock()
		s.log.Info(ctx, "dropping stale login", "userId", user.ID)
		return ErrStale
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, KeyUser, rawUser); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyRefreshToken, []byte(refreshToken))
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.user = user.Clone()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.loading = false
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Logout atomically clears the triple. Safe to call with no session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Clear(ctx)
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// UpdateUser merges patch into the current user without touching the
// credential pair. No-op when no user is present.
func (s *Store) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	s.mu.Lock()

	if s.user == nil {
		s.mu.Unlock()
		return nil
	}

	updated := s.user.Clone()
	patch.Apply(updated)

	rawUser, err := json.Marshal(updated)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.repo(s.db).Set(ctx, KeyUser, rawUser); err != nil {
		s.mu.Unlock()
		return err
	}

	s.user = updated
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// UpdateTokens implements api.TokenSource: it stores the refreshed credential
// pair. With no current user the call is a no-op, preserving the invariant
// that tokens never exist without a user.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || accessToken == "" || refreshToken == "" {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, KeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyRefreshToken, []byte(refreshToken))
	})
	if err != nil {
		return err
	}

	s.accessToken = accessToken
	s.refreshToken = refreshToken
	return nil
}
