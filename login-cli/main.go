// Package main logs in to Deezer from a terminal: it opens the browser on
// the login page, catches the redirect on localhost and prints the session.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-training/deezer-connect/pkg/config"
	"github.com/go-training/deezer-connect/pkg/logger"
)

// fatalError logs an error message and exits the program with status code 1
func fatalError(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalError("Failed to load configuration", err)
	}
	cfg.BindFlags(flag.CommandLine)
	port := flag.Int("port", 8085, "local port for the login callback")
	wait := flag.Duration("wait", 5*time.Minute, "how long to wait for the login to complete")
	flag.Parse()

	logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fatalError("Invalid configuration", err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(*port)))
	if err != nil {
		fatalError("Failed to listen for the callback", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *wait)
	defer cancel()

	l := &login{
		client: cfg.DeezerClient(),
		appID:  cfg.DeezerAppID(),
		secret: cfg.Secret,
		perms:  cfg.Permissions(),
		open:   openBrowser,
	}
	session, err := l.run(ctx, ln)
	if err != nil {
		fatalError("Deezer login failed", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session); err != nil {
		fatalError("Failed to print session", err)
	}
}
