// Package console reads typed values from a line-oriented input source.
//
// Every typed read re-prompts until the input parses. The only way out of
// a re-prompt loop without a value is an exhausted source, reported as
// ErrClosed.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/taskman/internal/todo"
)

// ErrClosed is returned once the input source has no more lines.
var ErrClosed = fmt.Errorf("input closed: %w", io.EOF)

// Messages shown when typed input fails to parse.
const (
	InvalidDate  = "\nInvalid date format. Please use the format specified."
	InvalidInt   = "\nInvalid input, please input an integer."
	InvalidYesNo = "\nInvalid input, please enter 'y' or 'n'."
)

// Prompter writes prompts to out and reads answers from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	closed bool
}

// NewPrompter returns a prompter over in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Out returns the writer prompts go to.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Say writes msg followed by a newline.
func (p *Prompter) Say(msg string) {
	fmt.Fprintln(p.out, msg)
}

// Sayf writes a formatted message followed by a newline.
func (p *Prompter) Sayf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
	fmt.Fprintln(p.out)
}

// Line prints msg and returns the next input line without its line ending.
func (p *Prompter) Line(msg string) (string, error) {
	fmt.Fprint(p.out, msg)
	if p.closed {
		return "", ErrClosed
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		p.closed = true
		if line == "" {
			return "", ErrClosed
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Date reads a YYYY-MM-DD date.
func (p *Prompter) Date(msg string) (time.Time, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return time.Time{}, err
		}
		d, err := todo.ParseDate(line)
		if err == nil {
			return d, nil
		}
		p.Say(InvalidDate)
	}
}

// Int reads a base-10 integer.
func (p *Prompter) Int(msg string) (int, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			return n, nil
		}
		p.Say(InvalidInt)
	}
}

// YesNo reads y or n, case-insensitively.
func (p *Prompter) YesNo(msg string) (bool, error) {
	for {
		line, err := p.Line(msg)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		p.Say(InvalidYesNo)
	}
}
