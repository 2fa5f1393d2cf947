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

// prompter reads answers from the command's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Line prints label and returns the trimmed answer.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// Password prints label and reads a secret.
func (p *prompter) Password(label string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	// Piped input: the password is the next line, kept verbatim apart from the newline.
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(p.out)
	return strings.TrimRight(line, "\r\n"), nil
}
