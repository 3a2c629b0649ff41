// Command authkit is the administrative CLI.
//
//	authkit csu --dsn authkit.db [--email a@b.c] [--username admin] [--create-tables] [--echo]
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/version"
)

const usage = `Usage: authkit <command> [flags]

Commands:
  csu       create a superuser
  version   print the build version

Run "authkit <command> --help" for command flags.
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var err error
	switch args[0] {
	case "csu":
		err = createSuperuser(ctx, args[1:], stdin, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.Get().Banner("authkit"))
		return 0
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("unknown command %q", args[0])
		fmt.Fprint(stderr, usage)
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", describe(err))
		return 1
	}
	return 0
}

// describe renders err for a terminal user.
func describe(err error) string {
	ae, ok := apperrors.AsAppError(err)
	if !ok {
		return err.Error()
	}
	msg := ae.Message
	if field, ok := ae.Details["field"].(string); ok {
		msg += " (" + field + ")"
	}
	if ae.Cause != nil {
		msg += ": " + ae.Cause.Error()
	}
	return msg
}
