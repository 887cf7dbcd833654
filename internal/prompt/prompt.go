// Package prompt reads interactive answers from a terminal or a pipe.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("no input")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

// New creates a Prompter. Secrets are read without echo when in is a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTerm = true
	}
	return p
}

// Interactive reports whether answers come from a terminal.
func (p *Prompter) Interactive() bool {
	return p.isTerm
}

// Line asks for a single line. An empty answer returns def.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Secret asks for a value without echoing it. With keep set, the label
// says that an empty answer keeps the current value; the empty string is
// returned in that case.
func (p *Prompter) Secret(label string, keep bool) (string, error) {
	if keep {
		fmt.Fprintf(p.out, "%s [keep current]: ", label)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	if !p.isTerm {
		return p.readLine()
	}

	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// Choose asks for a number between 1 and n, re-asking on invalid answers.
// An empty answer returns def. The result is 1-based.
func (p *Prompter) Choose(label string, n, def int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("nothing to choose from")
	}

	for {
		answer, err := p.Line(fmt.Sprintf("%s (1-%d)", label, n), defaultChoice(def, n))
		if err != nil {
			return 0, err
		}

		choice, err := strconv.Atoi(answer)
		if err == nil && choice >= 1 && choice <= n {
			return choice, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", n)
	}
}

func defaultChoice(def, n int) string {
	if def < 1 || def > n {
		return ""
	}
	return strconv.Itoa(def)
}

// readLine returns the next line without surrounding whitespace. A final
// line without newline is returned as is; ErrNoInput only when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
