package deezer

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://connect.deezer.com/oauth/auth.php"
	tokenURL = "https://connect.deezer.com/oauth/access_token.php"
)

// Endpoint is the Deezer Connect endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  authURL,
	TokenURL: tokenURL,
}

// Config holds what a Client needs to talk to Deezer.
type Config struct {
	// Endpoint defaults to Endpoint when both URLs are empty.
	Endpoint oauth2.Endpoint
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client builds login URLs and exchanges authorization codes.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	endpoint   oauth2.Endpoint
	httpClient *http.Client
}

// NewClient creates a Client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint.AuthURL = Endpoint.AuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = Endpoint.TokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

var defaultClient = NewClient(Config{})

// Endpoint returns the endpoints the client talks to.
func (c *Client) Endpoint() oauth2.Endpoint {
	return c.endpoint
}

// LoginURL returns the URL to redirect the end user to.
// A nil perms asks for DefaultPermissions; a non-nil empty slice sends an
// empty perms parameter. redirectURL must belong to the domain registered
// for the application, which only Deezer checks.
func (c *Client) LoginURL(appID AppID, redirectURL string, perms []Permission) (string, error) {
	if err := appID.validate(); err != nil {
		return "", err
	}
	if perms == nil {
		perms = DefaultPermissions
	}

	u, err := url.Parse(c.endpoint.AuthURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse deezer auth URL: %w", err)
	}
	values := u.Query()
	values.Set("app_id", appID.String())
	values.Set("redirect_uri", redirectURL)
	values.Set("perms", joinPermissions(perms))
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// LoginURL builds a login URL against the default Deezer endpoints.
func LoginURL(appID AppID, redirectURL string, perms []Permission) (string, error) {
	return defaultClient.LoginURL(appID, redirectURL, perms)
}
