package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/openlease/openlease/internal/adapter/postgres"
	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/domain/actor"
	"github.com/openlease/openlease/internal/service"
)

// runAdmin dispatches admin subcommands (reset-password, create-actor, list-actors).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "reset-password":
		return runAdminResetPassword(args[1:])
	case "create-actor":
		return runAdminCreateActor(args[1:])
	case "list-actors":
		return runAdminListActors(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: openlease admin <command> [options]

Commands:
  reset-password   Reset an actor's password
  create-actor     Create a new actor
  list-actors      List all actors
  help             Show this help message

Examples:
  openlease admin reset-password --email owner@example.com
  openlease admin create-actor --email owner@example.com --name "Ada Owner" --role landlord
  openlease admin list-actors
`)
}

func loadAdminDeps() (*service.SessionService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	sessionSvc := service.NewSessionService(store, nil, nil, &cfg.Auth)

	cleanup := func() {
		pool.Close()
	}
	return sessionSvc, cleanup, nil
}

func runAdminResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	email := fs.String("email", "", "actor email address (required)")
	password := fs.String("password", "", "new password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	newPass := *password
	if newPass == "" {
		var err error
		newPass, err = promptPassword("New password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if newPass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	sessionSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := sessionSvc.AdminResetPassword(context.Background(), *email, newPass); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Password reset successfully for %s\n", *email)
	return nil
}

func runAdminCreateActor(args []string) error {
	fs := flag.NewFlagSet("create-actor", flag.ContinueOnError)
	email := fs.String("email", "", "actor email address (required)")
	name := fs.String("name", "", "actor display name (required)")
	role := fs.String("role", "tenant", "actor role: landlord or tenant")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	sessionSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := sessionSvc.Register(context.Background(), &actor.CreateRequest{
		Email:       *email,
		DisplayName: *name,
		Password:    pass,
		Role:        actor.Role(*role),
	})
	if err != nil {
		return fmt.Errorf("create actor: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Actor created: %s (id=%s, role=%s)\n", a.Email, a.ID, a.Role)
	return nil
}

func runAdminListActors(args []string) error {
	fs := flag.NewFlagSet("list-actors", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sessionSvc, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	actors, err := sessionSvc.ListActors(context.Background())
	if err != nil {
		return fmt.Errorf("list actors: %w", err)
	}

	if len(actors) == 0 {
		fmt.Println("No actors found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tENABLED")
	for i := range actors {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			actors[i].ID, actors[i].Email, actors[i].DisplayName, actors[i].Role, actors[i].Enabled)
	}
	return w.Flush()
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
