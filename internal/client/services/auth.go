package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/objectstore"
	"github.com/dmitrijs2005/expertconnect/internal/client/tokens"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

// DefaultRefreshSkew is how close to expiry EnsureFresh refreshes.
const DefaultRefreshSkew = 30 * time.Second

type AuthStatus string

const (
	Unauthenticated AuthStatus = "unauthenticated"
	Authenticating  AuthStatus = "authenticating"
	Authenticated   AuthStatus = "authenticated"
)

type AuthState struct {
	Status AuthStatus
	User   *models.User
	Err    error
}

// AuthService owns the session: tokens in the store, the current user in
// memory.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, req models.RegisterRequest) error
	// Logout always succeeds; storage failures are only logged.
	Logout(ctx context.Context)
	// Restore resumes a persisted session at startup.
	Restore(ctx context.Context) error
	Refresh(ctx context.Context) error
	// EnsureFresh refreshes the access token when it is about to expire.
	EnsureFresh(ctx context.Context) error
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error
	UploadAvatar(ctx context.Context, filename string, data []byte) error
	// ReloadUser re-reads /users/me/, e.g. after skill changes.
	ReloadUser(ctx context.Context) error

	CurrentUser() (models.User, bool)
	State() AuthState
	Subscribe(fn func(AuthState)) (cancel func())
}

type authService struct {
	api      client.AuthAPI
	store    tokens.Store
	uploader objectstore.Uploader
	log      logging.Logger

	now  func() time.Time
	skew time.Duration

	mu    sync.Mutex
	state AuthState
	subs  observers[AuthState]
}

// NewAuthService binds the auth endpoints to a token store. uploader may be
// nil, in which case UploadAvatar reports objectstore.ErrDisabled.
func NewAuthService(api client.AuthAPI, store tokens.Store, uploader objectstore.Uploader, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{
		api:      api,
		store:    store,
		uploader: uploader,
		log:      log,
		now:      time.Now,
		skew:     DefaultRefreshSkew,
		state:    AuthState{Status: Unauthenticated},
	}
}

func (a *authService) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// snapshot copies the state so callers cannot mutate the cached user. The
// caller holds a.mu.
func (a *authService) snapshot() AuthState {
	s := a.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (a *authService) CurrentUser() (models.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Status != Authenticated || a.state.User == nil {
		return models.User{}, false
	}
	return *a.state.User, true
}

func (a *authService) Subscribe(fn func(AuthState)) func() {
	return a.subs.subscribe(fn)
}

func (a *authService) set(fn func(s *AuthState)) {
	a.mu.Lock()
	prev := a.state.Status
	fn(&a.state)
	snap := a.snapshot()
	a.mu.Unlock()

	if prev != snap.Status {
		a.log.Debug(context.Background(), "auth state changed", "from", prev, "to", snap.Status)
	}
	a.subs.notify(snap)
}

func (a *authService) fail(ctx context.Context, op string, err error) error {
	a.log.Warn(ctx, op+" failed", "error", err)
	a.set(func(s *AuthState) { s.Err = err })
	return err
}

func (a *authService) signOut() {
	a.set(func(s *AuthState) {
		s.Status = Unauthenticated
		s.User = nil
	})
}

func (a *authService) clearTokens(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn(ctx, "token clear failed", "error", err)
	}
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) error {
	if err := validation.Struct(creds); err != nil {
		return a.fail(ctx, "login", err)
	}

	prev := a.State()
	a.set(func(s *AuthState) {
		s.Status = Authenticating
		s.Err = nil
	})

	// abort restores the pre-login state when the caller went away.
	abort := func() error {
		a.set(func(s *AuthState) { *s = prev })
		return ctx.Err()
	}

	pair, err := a.api.Login(ctx, creds)
	if ctx.Err() != nil {
		return abort()
	}
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			err = fmt.Errorf("login error: %w: %w", common.ErrInvalidCredentials, err)
		} else {
			err = fmt.Errorf("login error: %w", err)
		}
		a.clearTokens(ctx)
		a.signOut()
		return a.fail(ctx, "login", err)
	}

	if err := a.store.Save(ctx, pair); err != nil {
		a.signOut()
		return a.fail(ctx, "login", fmt.Errorf("token save error: %w", err))
	}

	user, err := a.api.Me(ctx)
	if ctx.Err() != nil {
		a.clearTokens(context.WithoutCancel(ctx))
		return abort()
	}
	if err != nil {
		a.clearTokens(ctx)
		a.signOut()
		return a.fail(ctx, "login", fmt.Errorf("fetch profile error: %w", err))
	}

	a.set(func(s *AuthState) {
		s.Status = Authenticated
		s.User = &user
		s.Err = nil
	})
	a.log.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := validation.Struct(req); err != nil {
		return a.fail(ctx, "register", err)
	}

	if _, err := a.api.Register(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return a.fail(ctx, "register", fmt.Errorf("register error: %w", err))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	a.set(func(s *AuthState) { s.Err = nil })
	return nil
}

func (a *authService) Logout(ctx context.Context) {
	a.clearTokens(ctx)
	a.set(func(s *AuthState) {
		s.Status = Unauthenticated
		s.User = nil
		s.Err = nil
	})
}

func (a *authService) Restore(ctx context.Context) error {
	access, err := a.store.AccessToken(ctx)
	if err != nil {
		return a.fail(ctx, "restore", err)
	}
	if access == "" {
		return nil
	}

	user, err := a.api.Me(ctx)
	if errors.Is(err, common.ErrAuthentication) {
		if err := a.Refresh(ctx); err != nil {
			return err
		}
		user, err = a.api.Me(ctx)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		// a stale session is dropped; a network failure keeps it for later
		if errors.Is(err, common.ErrAuthentication) {
			a.clearTokens(ctx)
			a.signOut()
		}
		return a.fail(ctx, "restore", fmt.Errorf("fetch profile error: %w", err))
	}

	a.set(func(s *AuthState) {
		s.Status = Authenticated
		s.User = &user
		s.Err = nil
	})
	return nil
}

func (a *authService) Refresh(ctx context.Context) error {
	refresh, err := a.store.RefreshToken(ctx)
	if err != nil {
		return a.fail(ctx, "refresh", err)
	}
	if refresh == "" {
		a.clearTokens(ctx)
		a.signOut()
		return a.fail(ctx, "refresh", fmt.Errorf("refresh error: %w", common.ErrAuthentication))
	}

	access, err := a.api.Refresh(ctx, refresh)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			a.clearTokens(ctx)
			a.signOut()
		}
		return a.fail(ctx, "refresh", fmt.Errorf("refresh error: %w", err))
	}

	if err := a.store.SetAccess(ctx, access); err != nil {
		return a.fail(ctx, "refresh", err)
	}
	a.log.Debug(ctx, "access token refreshed")
	return nil
}

func (a *authService) EnsureFresh(ctx context.Context) error {
	access, err := a.store.AccessToken(ctx)
	if err != nil || access == "" {
		return err
	}

	exp, err := tokens.ExpiresAt(access)
	if err != nil {
		// opaque or exp-less token, let the server decide
		return nil
	}
	if exp.Sub(a.now()) > a.skew {
		return nil
	}
	return a.Refresh(ctx)
}

func (a *authService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	if _, ok := a.CurrentUser(); !ok {
		return a.fail(ctx, "update profile", common.ErrAuthentication)
	}
	if upd.Empty() {
		return nil
	}
	if err := validation.Struct(upd); err != nil {
		return a.fail(ctx, "update profile", err)
	}

	user, err := a.api.UpdateProfile(ctx, upd)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return a.fail(ctx, "update profile", fmt.Errorf("update profile error: %w", err))
	}

	a.set(func(s *AuthState) {
		s.User = &user
		s.Err = nil
	})
	return nil
}

func (a *authService) UploadAvatar(ctx context.Context, filename string, data []byte) error {
	user, ok := a.CurrentUser()
	if !ok {
		return a.fail(ctx, "upload avatar", common.ErrAuthentication)
	}
	if a.uploader == nil {
		return a.fail(ctx, "upload avatar", objectstore.ErrDisabled)
	}

	link, err := a.uploader.Upload(ctx, objectstore.AvatarKey(user.ID, filename), http.DetectContentType(data), data)
	if err != nil {
		return a.fail(ctx, "upload avatar", err)
	}

	return a.UpdateProfile(ctx, models.ProfileUpdate{ProfilePicture: &link})
}

func (a *authService) ReloadUser(ctx context.Context) error {
	if _, ok := a.CurrentUser(); !ok {
		return a.fail(ctx, "reload user", common.ErrAuthentication)
	}

	user, err := a.api.Me(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return a.fail(ctx, "reload user", fmt.Errorf("fetch profile error: %w", err))
	}

	a.set(func(s *AuthState) { s.User = &user })
	return nil
}
