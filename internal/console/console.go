// Package console is the line-oriented input/output port used by every interactive step.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/compozy/prflow/internal/domain"
)

// Console reads user answers and writes prompts and status lines.
type Console interface {
	// Prompt writes label without a trailing newline and reads one line.
	Prompt(label string) (string, error)
	// ReadLine reads one line with its terminator stripped.
	// It returns domain.ErrInputClosed once the input is exhausted.
	ReadLine() (string, error)
	Println(a ...any)
	Printf(format string, a ...any)
	Success(msg string)
	Warn(msg string)
}

type streamConsole struct {
	in      *bufio.Reader
	out     io.Writer
	success lipgloss.Style
	warn    lipgloss.Style
}

// New returns a Console reading from in and writing to out.
// Styles degrade to plain text when out is not a terminal.
func New(in io.Reader, out io.Writer) Console {
	r := lipgloss.NewRenderer(out)
	return &streamConsole{
		in:      bufio.NewReader(in),
		out:     out,
		success: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (c *streamConsole) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	return c.ReadLine()
}

func (c *streamConsole) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		// A final line without a newline still counts
		if line == "" {
			return "", domain.ErrInputClosed
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (c *streamConsole) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *streamConsole) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *streamConsole) Success(msg string) {
	fmt.Fprintln(c.out, c.success.Render(msg))
}

func (c *streamConsole) Warn(msg string) {
	fmt.Fprintln(c.out, c.warn.Render(msg))
}
