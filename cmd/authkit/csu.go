package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kbukum/authkit/authn"
	"github.com/kbukum/authkit/database"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/storage/gormrepo"
)

var errHelp = stderrors.New("help requested")

type csuOptions struct {
	dsn          string
	email        string
	username     string
	createTables bool
	echo         bool
	password     password.Config
}

func parseCSU(args []string, stderr io.Writer) (csuOptions, error) {
	var o csuOptions
	flags := pflag.NewFlagSet("csu", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&o.dsn, "dsn", "", "sqlite database path (required)")
	flags.StringVar(&o.email, "email", "", "superuser email (prompted when empty)")
	flags.StringVar(&o.username, "username", "", "superuser username (prompted when empty)")
	flags.BoolVar(&o.createTables, "create-tables", false, "create the users table if missing")
	flags.BoolVar(&o.echo, "echo", false, "log SQL statements")
	algorithm := flags.String("hash", string(password.AlgorithmBcrypt), "password hash algorithm: bcrypt or argon2id")
	flags.IntVar(&o.password.BcryptCost, "bcrypt-cost", password.DefaultBcryptCost, "bcrypt cost")

	if err := flags.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return o, errHelp
		}
		return o, err
	}
	if o.dsn == "" {
		return o, fmt.Errorf("--dsn is required")
	}
	o.password.Algorithm = password.Algorithm(*algorithm)
	o.password.ApplyDefaults()
	if err := o.password.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// createSuperuser implements "authkit csu".
func createSuperuser(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseCSU(args, stderr)
	if stderrors.Is(err, errHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	p := newPrompter(stdin, stdout)
	email, err := p.ask("Email: ", opts.email)
	if err != nil {
		return err
	}
	username, err := p.ask("Username: ", opts.username)
	if err != nil {
		return err
	}
	pass, err := p.newPassword()
	if err != nil {
		return err
	}

	logLevel := "warn"
	if opts.echo {
		logLevel = "info"
	}
	log := logger.NewWithWriter(&logger.Config{Level: logLevel, Format: "console", NoColor: true}, "authkit", stderr)

	dbCfg := database.Config{Enabled: true, DSN: opts.dsn, MaxRetries: 1, LogLevel: logLevel}
	dbCfg.ApplyDefaults()
	db := database.NewComponent(dbCfg, log)
	if err := db.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = db.Stop(context.Background()) }()

	repo := gormrepo.New(db.DB())
	if opts.createTables {
		if err := repo.Migrate(); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	// No tokens are issued here, so a throwaway signing key is enough.
	s, err := settings.New(uuid.NewString(), settings.WithIssueTokensOnRegister(false))
	if err != nil {
		return err
	}
	svc, err := authn.New(s, repo,
		authn.WithHasher(password.NewHasher(opts.password)),
		authn.WithLogger(log),
	)
	if err != nil {
		return err
	}

	su, err := svc.CreateSuperuser(ctx, email, username, pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Superuser created successfully: id=%d, email=%s, username=%s\n", su.ID, su.Email, su.Username)
	return nil
}
