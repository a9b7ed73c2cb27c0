package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-training/deezer-connect/pkg/core"
	"github.com/redis/rueidis"
)

// loginPrefix namespaces pending logins in Redis.
const loginPrefix = "deezer_login:"

// RedisStore implements core.LoginStore using Redis via rueidis.
// Logins expire on the server through the key TTL.
type RedisStore struct {
	client rueidis.Client
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	return NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	})
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Do(ctx, r.client.B().Ping().Build()).Error()
}

// SaveLogin stores a pending login with a TTL matching its deadline.
func (r *RedisStore) SaveLogin(ctx context.Context, login *core.PendingLogin) error {
	if login == nil {
		return ErrNilLogin
	}
	if login.State == "" {
		return ErrEmptyState
	}

	ttl := time.Until(time.Unix(login.ExpiresAt, 0))
	if ttl < time.Second {
		return ErrLoginExpired
	}

	data, err := json.Marshal(login)
	if err != nil {
		return fmt.Errorf("failed to marshal pending login: %w", err)
	}

	cmd := r.client.B().Set().Key(loginPrefix + login.State).Value(string(data)).ExSeconds(int64(ttl.Seconds())).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save pending login to redis: %w", err)
	}
	return nil
}

// GetLogin returns the pending login for state.
func (r *RedisStore) GetLogin(ctx context.Context, state string) (*core.PendingLogin, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	cmd := r.client.B().Get().Key(loginPrefix + state).Build()
	return r.decode(r.client.Do(ctx, cmd), "get")
}

// DeleteLogin removes the pending login for state.
func (r *RedisStore) DeleteLogin(ctx context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}

	cmd := r.client.B().Del().Key(loginPrefix + state).Build()
	result, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to delete pending login from redis: %w", err)
	}
	if result == 0 {
		return ErrLoginNotFound
	}
	return nil
}

// TakeLogin returns and removes the pending login with GETDEL.
func (r *RedisStore) TakeLogin(ctx context.Context, state string) (*core.PendingLogin, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	cmd := r.client.B().Getdel().Key(loginPrefix + state).Build()
	return r.decode(r.client.Do(ctx, cmd), "take")
}

func (r *RedisStore) decode(result rueidis.RedisResult, op string) (*core.PendingLogin, error) {
	raw, err := result.ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrLoginNotFound
		}
		return nil, fmt.Errorf("failed to %s pending login from redis: %w", op, err)
	}

	var login core.PendingLogin
	if err := json.Unmarshal([]byte(raw), &login); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending login: %w", err)
	}

	// The key TTL should already cover this.
	if login.Expired(time.Now()) {
		return nil, ErrLoginNotFound
	}
	return &login, nil
}
