package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	errPasswordMismatch = stderrors.New("passwords do not match")
	errPasswordEmpty    = stderrors.New("password must not be empty")
	errUnexpectedEOF    = stderrors.New("unexpected end of input")
)

// prompter reads answers line by line. Passwords are read without echo when
// stdin is a terminal.
type prompter struct {
	in   *bufio.Reader
	term *os.File
	out  io.Writer
}

func newPrompter(stdin io.Reader, stdout io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(stdin), out: stdout}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.term = f
	}
	return p
}

// ask returns preset when set, otherwise prompts until a non-empty answer.
func (p *prompter) ask(label, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	for {
		fmt.Fprint(p.out, label)
		line, err := p.line()
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// newPassword reads the password twice; both entries must match.
func (p *prompter) newPassword() (string, error) {
	first, err := p.secret("Password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errPasswordEmpty
	}
	second, err := p.secret("Password (again): ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func (p *prompter) secret(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.term == nil {
		return p.line()
	}
	b, err := term.ReadPassword(int(p.term.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// line reads one line without its terminator. A final line without a
// newline is accepted.
func (p *prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	switch {
	case err == nil:
	case stderrors.Is(err, io.EOF) && s != "":
	case stderrors.Is(err, io.EOF):
		return "", errUnexpectedEOF
	default:
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
