package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-training/deezer-connect/pkg/deezer"

	"github.com/google/uuid"
)

// RequestIDKey is a custom context key type for storing the request ID in context.
type RequestIDKey struct{}

// ClientKey is a custom context key type for storing the Deezer client in context.
type ClientKey struct{}

// CredentialsKey is a custom context key type for storing app credentials in context.
type CredentialsKey struct{}

// Credentials identify the Deezer application on whose behalf tools act.
type Credentials struct {
	AppID  deezer.AppID
	Secret string
}

// WithRequestID returns a new context with a generated request ID set.
func WithRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, uuid.New().String())
}

// RequestIDFromContext returns the request ID, or "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey{}).(string)
	return reqID
}

// LoggerFromCtx returns a slog.Logger with request_id field if present in context.
// If no request ID is found, it returns the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		return slog.Default().With("request_id", reqID)
	}
	return slog.Default()
}

// WithClient returns a new context carrying the Deezer client.
func WithClient(ctx context.Context, client *deezer.Client) context.Context {
	return context.WithValue(ctx, ClientKey{}, client)
}

// ClientFromContext returns the Deezer client, or an error if missing.
func ClientFromContext(ctx context.Context) (*deezer.Client, error) {
	client, ok := ctx.Value(ClientKey{}).(*deezer.Client)
	if !ok || client == nil {
		return nil, fmt.Errorf("missing deezer client")
	}
	return client, nil
}

// WithCredentials returns a new context carrying the app credentials.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, CredentialsKey{}, creds)
}

// CredentialsFromContext returns the app credentials, or an error if missing.
func CredentialsFromContext(ctx context.Context) (Credentials, error) {
	creds, ok := ctx.Value(CredentialsKey{}).(Credentials)
	if !ok || creds.AppID.IsZero() {
		return Credentials{}, fmt.Errorf("missing deezer credentials")
	}
	return creds, nil
}
