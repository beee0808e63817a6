package ioport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrEndOfInput is returned by Read once both the queued inputs and the
// underlying reader are exhausted.
var ErrEndOfInput = errors.New("end of input")

// ConsoleOptions configures a Console.
type ConsoleOptions struct {
	// In is read one line per value. Ignored when Interactive is set.
	In  io.Reader
	Out io.Writer
	// Inputs are consumed before anything is read from In.
	Inputs []int64
	// ASCII writes values as Unicode code points instead of decimal lines.
	ASCII bool
	// Echo prints "Reading: N" after every accepted read.
	Echo bool
	// Interactive prompts on the controlling terminal with line editing.
	Interactive bool
	Prompt      string
}

type lineSource interface {
	ReadLine() (string, error)
	Close() error
}

// Console is the port used by the command line tool.
type Console struct {
	src    lineSource
	out    io.Writer
	queued []int64
	ascii  bool
	echo   bool
}

// NewConsole builds a console port. Call Close when done so an interactive
// terminal is restored.
func NewConsole(opts ConsoleOptions) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	var src lineSource
	if opts.Interactive {
		src = newTerminalSource(opts.Prompt)
	} else {
		in := opts.In
		if in == nil {
			in = os.Stdin
		}
		src = &readerSource{r: bufio.NewReader(in)}
	}
	return &Console{
		src:    src,
		out:    out,
		queued: append([]int64(nil), opts.Inputs...),
		ascii:  opts.ASCII,
		echo:   opts.Echo,
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (c *Console) Read() (int64, error) {
	value, err := c.next()
	if err != nil {
		return 0, err
	}
	if c.echo {
		if _, err := fmt.Fprintf(c.out, "Reading: %d\n", value); err != nil {
			return 0, err
		}
	}
	return value, nil
}

func (c *Console) next() (int64, error) {
	if len(c.queued) > 0 {
		value := c.queued[0]
		c.queued = c.queued[1:]
		return value, nil
	}
	line, err := c.src.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfInput
		}
		return 0, err
	}
	return ParseValue(line)
}

func (c *Console) Write(value int64) error {
	if c.ascii {
		if value < 0 || value > utf8.MaxRune || !utf8.ValidRune(rune(value)) {
			return fmt.Errorf("value %d is not a valid code point; run without ascii output", value)
		}
		_, err := io.WriteString(c.out, string(rune(value)))
		return err
	}
	_, err := fmt.Fprintf(c.out, "%d\n", value)
	return err
}

// Pending reports how many queued inputs have not been read yet.
func (c *Console) Pending() int {
	return len(c.queued)
}

func (c *Console) Close() error {
	if c.src == nil {
		return nil
	}
	return c.src.Close()
}

// ParseValue converts one line of input into a register value.
func ParseValue(line string) (int64, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return 0, fmt.Errorf("expected an integer, got an empty line")
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", text)
	}
	return value, nil
}

type readerSource struct {
	r *bufio.Reader
}

func (s *readerSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (s *readerSource) Close() error {
	return nil
}

// terminalSource opens the line editor on first use so programs that never
// read leave the terminal untouched.
type terminalSource struct {
	state  *liner.State
	prompt string
}

func newTerminalSource(prompt string) *terminalSource {
	return &terminalSource{prompt: prompt}
}

func (s *terminalSource) ReadLine() (string, error) {
	if s.state == nil {
		s.state = liner.NewLiner()
		s.state.SetCtrlCAborts(true)
	}
	line, err := s.state.Prompt(s.prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", fmt.Errorf("input aborted")
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		s.state.AppendHistory(line)
	}
	return line, nil
}

func (s *terminalSource) Close() error {
	if s.state == nil {
		return nil
	}
	return s.state.Close()
}
