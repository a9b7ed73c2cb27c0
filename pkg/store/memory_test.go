package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-training/deezer-connect/pkg/core"
)

func newLogin(state string, ttl time.Duration) *core.PendingLogin {
	now := time.Now()
	return &core.PendingLogin{
		State:       state,
		RedirectURI: "https://example.com/callback?state=" + state,
		Perms:       []string{"basic_access", "email"},
		CreatedAt:   now.Unix(),
		ExpiresAt:   now.Add(ttl).Unix(),
	}
}

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.logins == nil {
		t.Error("logins map should be initialized")
	}
}

func TestMemoryStore_SaveLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   *core.PendingLogin
		wantErr error
	}{
		{
			name:    "valid login",
			login:   newLogin("state-123", 10*time.Minute),
			wantErr: nil,
		},
		{
			name:    "nil login",
			login:   nil,
			wantErr: ErrNilLogin,
		},
		{
			name:    "empty state",
			login:   newLogin("", 10*time.Minute),
			wantErr: ErrEmptyState,
		},
		{
			name:    "already expired",
			login:   newLogin("state-old", -time.Minute),
			wantErr: ErrLoginExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			ctx := context.Background()

			err := store.SaveLogin(ctx, tt.login)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SaveLogin() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr == nil {
				saved, getErr := store.GetLogin(ctx, tt.login.State)
				if getErr != nil {
					t.Fatalf("Failed to retrieve saved login: %v", getErr)
				}
				if saved.RedirectURI != tt.login.RedirectURI {
					t.Errorf("RedirectURI = %q, want %q", saved.RedirectURI, tt.login.RedirectURI)
				}
			}
		})
	}
}

func TestMemoryStore_GetLogin(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveLogin(ctx, newLogin("known", time.Minute)); err != nil {
		t.Fatalf("SaveLogin() error = %v", err)
	}

	tests := []struct {
		name    string
		state   string
		wantErr error
	}{
		{name: "existing login", state: "known"},
		{name: "unknown login", state: "unknown", wantErr: ErrLoginNotFound},
		{name: "empty state", state: "", wantErr: ErrEmptyState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.GetLogin(ctx, tt.state)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetLogin() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.SaveLogin(ctx, newLogin("short", time.Minute)); err != nil {
		t.Fatalf("SaveLogin() error = %v", err)
	}

	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, err := store.GetLogin(ctx, "short"); !errors.Is(err, ErrLoginNotFound) {
		t.Errorf("GetLogin() on expired login error = %v, want ErrLoginNotFound", err)
	}
	if _, err := store.TakeLogin(ctx, "short"); !errors.Is(err, ErrLoginNotFound) {
		t.Errorf("TakeLogin() on expired login error = %v, want ErrLoginNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired login should be dropped by TakeLogin, Len() = %d", store.Len())
	}
}

func TestMemoryStore_PurgeOnSave(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.SaveLogin(ctx, newLogin("a", time.Minute))
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	login := newLogin("b", time.Hour)
	login.ExpiresAt = now.Add(time.Hour).Unix()
	if err := store.SaveLogin(ctx, login); err != nil {
		t.Fatalf("SaveLogin() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemoryStore_DeleteLogin(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.SaveLogin(ctx, newLogin("to-delete", time.Minute))

	if err := store.DeleteLogin(ctx, "to-delete"); err != nil {
		t.Errorf("DeleteLogin() error = %v", err)
	}
	if err := store.DeleteLogin(ctx, "to-delete"); !errors.Is(err, ErrLoginNotFound) {
		t.Errorf("second DeleteLogin() error = %v, want ErrLoginNotFound", err)
	}
	if err := store.DeleteLogin(ctx, ""); !errors.Is(err, ErrEmptyState) {
		t.Errorf("DeleteLogin(\"\") error = %v, want ErrEmptyState", err)
	}
}

func TestMemoryStore_TakeLoginOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.SaveLogin(ctx, newLogin("once", time.Minute))

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.TakeLogin(ctx, "once"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("TakeLogin() succeeded %d times, want 1", successes)
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state := fmt.Sprintf("state-%d", i)
			if err := store.SaveLogin(ctx, newLogin(state, time.Minute)); err != nil {
				t.Errorf("SaveLogin() error = %v", err)
				return
			}
			if _, err := store.GetLogin(ctx, state); err != nil {
				t.Errorf("GetLogin() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("Len() = %d, want 50", store.Len())
	}
}
