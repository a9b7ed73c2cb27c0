package core

import (
	"context"
	"time"
)

// PendingLogin is a login redirect that has not come back yet. The state
// value ties the Deezer callback to the browser that started the login.
type PendingLogin struct {
	State       string   `json:"state"`
	RedirectURI string   `json:"redirect_uri"`
	Perms       []string `json:"perms"`
	// ReturnTo is where the browser is sent once the session is created.
	// Empty means the callback answers with JSON.
	ReturnTo  string `json:"return_to,omitempty"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the login is past its deadline at now.
func (p *PendingLogin) Expired(now time.Time) bool {
	return now.Unix() > p.ExpiresAt
}

// LoginStore keeps pending logins between the redirect and the callback.
// Access tokens are never stored.
type LoginStore interface {
	SaveLogin(ctx context.Context, login *PendingLogin) error
	GetLogin(ctx context.Context, state string) (*PendingLogin, error)
	DeleteLogin(ctx context.Context, state string) error
	// TakeLogin returns the login and removes it in one step, so a state
	// value can be redeemed only once.
	TakeLogin(ctx context.Context, state string) (*PendingLogin, error)
}
