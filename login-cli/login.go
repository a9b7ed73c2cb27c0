package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/go-training/deezer-connect/pkg/deezer"

	"github.com/google/uuid"
)

// ErrLoginRefused is returned when the user declines the permissions.
var ErrLoginRefused = errors.New("login refused")

// callback carries the query Deezer redirected the browser with.
type callback struct {
	code   string
	reason string
}

// login runs one browser login against a local callback listener.
type login struct {
	client *deezer.Client
	appID  deezer.AppID
	secret string
	perms  []deezer.Permission
	// open shows url to the user; openBrowser by default.
	open func(url string)
}

// run listens on ln, sends the user to Deezer and exchanges the returned code.
func (l *login) run(ctx context.Context, ln net.Listener) (*deezer.Session, error) {
	state := uuid.New().String()
	port := ln.Addr().(*net.TCPAddr).Port
	redirectURI := "http://localhost:" + strconv.Itoa(port) + "/callback?" + url.Values{"state": {state}}.Encode()

	loginURL, err := l.client.LoginURL(l.appID, redirectURI, l.perms)
	if err != nil {
		return nil, err
	}

	callbacks := make(chan callback, 1)
	srv := &http.Server{Handler: callbackHandler(state, callbacks)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Callback server error", "err", err)
		}
	}()
	defer srv.Close()

	slog.Info("Opening browser to Deezer login", "url", loginURL)
	l.open(loginURL)

	slog.Info("Waiting for authorization callback...")
	var cb callback
	select {
	case cb = <-callbacks:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for callback: %w", ctx.Err())
	}
	if cb.reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrLoginRefused, cb.reason)
	}

	slog.Info("Exchanging authorization code for a session...")
	result := <-l.client.CreateSessionAsync(ctx, l.appID, l.secret, cb.code)
	return result.Session, result.Err
}

// callbackHandler forwards the first callback carrying the expected state.
// callbacks must have room for one value.
func callbackHandler(state string, callbacks chan<- callback) http.Handler {
	var done atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		cb := callback{code: q.Get("code"), reason: q.Get("error_reason")}
		if cb.code == "" && cb.reason == "" {
			http.Error(w, "code is required", http.StatusBadRequest)
			return
		}

		// Only the first matching callback counts, even once run has taken it.
		if !done.CompareAndSwap(false, true) {
			http.Error(w, "login already completed", http.StatusConflict)
			return
		}
		callbacks <- cb

		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(`<html><body><h1>Deezer login complete</h1>` +
			`<p>You can close this window and return to the terminal.</p></body></html>`)); err != nil {
			slog.Error("Error writing response", "err", err)
		}
	})
	return mux
}

// openBrowser opens the default browser to the specified URL
func openBrowser(url string) {
	var err error

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = errors.New("unsupported platform")
	}

	if err != nil {
		slog.Error("Failed to open browser", "err", err)
		slog.Info("Please open the following URL in your browser", "url", url)
	}
}
