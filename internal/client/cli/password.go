package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptyPassword = errors.New("password is required")

// promptPassword reads a password without echo from the terminal, or a
// single line from r when fromReader is set or stdin is not a terminal.
func promptPassword(r io.Reader, w io.Writer, fromReader bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if fromReader || !isTerminal(fd) {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", errEmptyPassword
		}
		return line, nil
	}

	fmt.Fprint(w, "Password: ")
	password, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if len(password) == 0 {
		return "", errEmptyPassword
	}
	return string(password), nil
}
