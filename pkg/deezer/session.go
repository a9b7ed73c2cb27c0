package deezer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const tracerName = "github.com/go-training/deezer-connect/pkg/deezer"

// Session is the result of a successful code exchange.
type Session struct {
	AccessToken string `json:"access_token"`
	// Expires is the lifetime in seconds. 0 means the token never expires,
	// which is what Deezer grants with the offline_access permission.
	Expires int64 `json:"expires"`

	receivedAt time.Time
}

// NeverExpires reports whether the token has no lifetime limit.
func (s *Session) NeverExpires() bool {
	return s.Expires == 0
}

// Token converts the session into an oauth2 token so it can back an
// oauth2.TokenSource. Expiry stays zero when the token never expires.
func (s *Session) Token() *oauth2.Token {
	tok := &oauth2.Token{AccessToken: s.AccessToken}
	if s.Expires > 0 {
		issued := s.receivedAt
		if issued.IsZero() {
			issued = time.Now()
		}
		tok.Expiry = issued.Add(time.Duration(s.Expires) * time.Second)
	}
	return tok
}

// TokenSource returns a source that always yields this session's token.
func (s *Session) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(s.Token())
}

// SessionResult is delivered exactly once by CreateSessionAsync.
type SessionResult struct {
	Session *Session
	Err     error
}

// CreateSession exchanges an authorization code for an access token with a
// single GET to the token endpoint.
//
// Errors, checked in this order:
//   - transport failures are returned wrapped;
//   - a non-200 status with a body gives a *ProviderError;
//   - an empty body, whatever the status, gives an *UnknownResponseError;
//   - a body without access_token gives a *ProviderError.
func (c *Client) CreateSession(ctx context.Context, appID AppID, secret, code string) (*Session, error) {
	if err := appID.validate(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "deezer.CreateSession",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("deezer.app_id", appID.String())),
	)
	defer span.End()

	session, err := c.createSession(ctx, span, appID, secret, code)
	if err != nil {
		span.SetAttributes(attribute.String("deezer.outcome", outcome(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("deezer.outcome", "ok"),
		attribute.Int64("deezer.expires", session.Expires),
	)
	return session, nil
}

// CreateSessionAsync runs CreateSession in its own goroutine. The returned
// channel yields one SessionResult and is then closed.
func (c *Client) CreateSessionAsync(ctx context.Context, appID AppID, secret, code string) <-chan SessionResult {
	ch := make(chan SessionResult, 1)
	go func() {
		defer close(ch)
		session, err := c.CreateSession(ctx, appID, secret, code)
		ch <- SessionResult{Session: session, Err: err}
	}()
	return ch
}

// CheckSession is not supported: Deezer has no endpoint to inspect a token.
func (c *Client) CheckSession(ctx context.Context, appID AppID, accessToken string) error {
	return ErrNotYetSupported
}

// DestroySession is not supported: Deezer has no endpoint to revoke a token.
func (c *Client) DestroySession(ctx context.Context, appID AppID, accessToken string) error {
	return ErrNotYetSupported
}

// CreateSession exchanges a code against the default Deezer endpoints.
func CreateSession(ctx context.Context, appID AppID, secret, code string) (*Session, error) {
	return defaultClient.CreateSession(ctx, appID, secret, code)
}

func (c *Client) createSession(
	ctx context.Context, span trace.Span, appID AppID, secret, code string,
) (*Session, error) {
	u, err := url.Parse(c.endpoint.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deezer token URL: %w", err)
	}
	values := u.Query()
	values.Set("app_id", appID.String())
	values.Set("secret", secret)
	values.Set("code", code)
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request deezer access token: %w", redactURL(err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read deezer token response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && len(body) > 0 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, &UnknownResponseError{Response: resp}
	}

	return parseSession(resp.StatusCode, string(body))
}

// parseSession decodes a form encoded token response.
func parseSession(status int, body string) (*Session, error) {
	providerErr := &ProviderError{StatusCode: status, Body: body}

	fields := parseForm(body)
	accessToken := fields.Get("access_token")
	if accessToken == "" {
		return nil, providerErr
	}

	var expires int64
	if raw := strings.TrimSpace(fields.Get("expires")); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, providerErr
		}
		expires = int64(f)
	}

	return &Session{
		AccessToken: accessToken,
		Expires:     expires,
		receivedAt:  time.Now(),
	}, nil
}

// parseForm splits a form encoded body on "&" only. Unlike url.ParseQuery a
// malformed pair never drops its neighbours, and a value that fails to
// unescape is kept as sent.
func parseForm(body string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values.Add(unescape(key), unescape(value))
	}
	return values
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// redactURL drops the query string, which carries the application secret,
// from transport errors.
func redactURL(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
		u.RawQuery = ""
		urlErr.URL = u.String()
	}
	return err
}

func outcome(err error) string {
	var (
		providerErr *ProviderError
		unknownErr  *UnknownResponseError
	)
	switch {
	case errors.As(err, &providerErr):
		return "provider_error"
	case errors.As(err, &unknownErr):
		return "unknown_response"
	default:
		return "transport_error"
	}
}
