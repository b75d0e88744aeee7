// Command users creates and deletes inkpost accounts.
//
//	users create -email a@x.com -password '...'
//	users delete -email a@x.com -redis-url redis://localhost:6379
//	users delete -id 01J...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/inkpost/inkpost/internal/cache"
	"github.com/inkpost/inkpost/internal/repository"
	"github.com/inkpost/inkpost/internal/service"
)

type output struct {
	UserID       string `json:"user_id"`
	EmailAddress string `json:"email_address"`
	Action       string `json:"action"`
}

// backends opens the stores a command needs. Tests swap in memory stores.
type backends struct {
	openStore func(ctx context.Context, databaseURL string) (service.UserStore, func(), error)
	openCache func(ctx context.Context, redisURL string) (service.SessionCache, func(), error)
}

var defaultBackends = backends{
	openStore: func(ctx context.Context, databaseURL string) (service.UserStore, func(), error) {
		repo, err := repository.New(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	},
	openCache: func(ctx context.Context, redisURL string) (service.SessionCache, func(), error) {
		c, err := cache.New(ctx, redisURL)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultBackends)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, b backends) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet("users "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		databaseURL = fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		redisURL    = fs.String("redis-url", os.Getenv("REDIS_URL"), "Redis connection string (delete only, revokes cached sessions)")
		email       = fs.String("email", "", "Email address")
		password    = fs.String("password", os.Getenv("INKPOST_PASSWORD"), "Password for create")
		userID      = fs.String("id", "", "User ID for delete")
		format      = fs.String("format", "plain", "Output format: plain or json")
	)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "create":
		if *email == "" || *password == "" {
			fmt.Fprintln(stderr, "create requires -email and -password")
			return 2
		}
	case "delete":
		if (*email == "") == (*userID == "") {
			fmt.Fprintln(stderr, "delete requires exactly one of -email or -id")
			return 2
		}
	default:
		usage(stderr)
		return 2
	}

	if *format != "plain" && *format != "json" {
		fmt.Fprintln(stderr, "invalid format; use plain or json")
		return 2
	}

	if *databaseURL == "" {
		fmt.Fprintln(stderr, "DATABASE_URL is required")
		return 1
	}
	// The server may still serve a deleted user's sessions from Redis.
	if args[0] == "delete" && *redisURL == "" {
		fmt.Fprintln(stderr, "REDIS_URL is required for delete")
		return 1
	}

	store, closeStore, err := b.openStore(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(stderr, "connect database:", err)
		return 1
	}
	defer closeStore()

	var sessionCache service.SessionCache
	if args[0] == "delete" {
		c, closeCache, err := b.openCache(ctx, *redisURL)
		if err != nil {
			fmt.Fprintln(stderr, "connect redis:", err)
			return 1
		}
		defer closeCache()
		sessionCache = c
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	users := service.NewUserService(store, sessionCache, logger)

	var out output
	switch args[0] {
	case "create":
		user, err := users.Register(ctx, *email, *password)
		if err != nil {
			if verr, ok := service.IsValidationError(err); ok {
				fmt.Fprintln(stderr, verr.Error())
				return 1
			}
			fmt.Fprintln(stderr, "create user:", err)
			return 1
		}
		out = output{UserID: user.ID, EmailAddress: user.EmailAddress, Action: "created"}

	case "delete":
		id := *userID
		address := ""
		if id == "" {
			user, err := users.GetUserByEmail(ctx, *email)
			if err != nil {
				return reportDeleteError(stderr, err)
			}
			id, address = user.ID, user.EmailAddress
		}
		if err := users.DeleteUser(ctx, id); err != nil {
			return reportDeleteError(stderr, err)
		}
		out = output{UserID: id, EmailAddress: address, Action: "deleted"}
	}

	switch strings.ToLower(*format) {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintf(stdout, "%s %s\n", out.Action, out.UserID)
	}
	return 0
}

func reportDeleteError(stderr io.Writer, err error) int {
	if errors.Is(err, service.ErrUserNotFound) {
		fmt.Fprintln(stderr, "user not found")
		return 1
	}
	if errors.Is(err, service.ErrSessionsNotRevoked) {
		fmt.Fprintln(stderr, "user deleted but cached sessions were not revoked:", err)
		return 1
	}
	fmt.Fprintln(stderr, "delete user:", err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: users create -email EMAIL -password PASSWORD [-format plain|json]")
	fmt.Fprintln(w, "       users delete (-email EMAIL | -id ID) -redis-url URL [-format plain|json]")
}
