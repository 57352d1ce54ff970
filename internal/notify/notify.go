// Package notify presents success, error and confirmation messages to the
// operator.
package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/locale"
)

// Level is the severity of a notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notifier is the notification surface the cart builder reports through.
// Title, message and detail are locale keys or text passed through as is.
type Notifier interface {
	Success(title, message string)
	Error(title, message, detail string)
	Warning(title, message string)
	Info(title, message string)
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// Notice is one rendered notification
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Console writes notices to out and reads confirmations from in.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	printer *message.Printer
}

// NewConsole creates a console notifier. in may be nil, in which case every
// confirmation is declined.
func NewConsole(out io.Writer, in io.Reader, printer *message.Printer) *Console {
	c := &Console{
		out:     out,
		printer: printer,
	}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

func (c *Console) Success(title, msg string) {
	c.write(Notice{Level: LevelSuccess, Title: title, Message: msg})
}

func (c *Console) Error(title, msg, detail string) {
	c.write(Notice{Level: LevelError, Title: title, Message: msg, Detail: detail})
}

func (c *Console) Warning(title, msg string) {
	c.write(Notice{Level: LevelWarning, Title: title, Message: msg})
}

func (c *Console) Info(title, msg string) {
	c.write(Notice{Level: LevelInfo, Title: title, Message: msg})
}

// Confirm prints the question and waits for a y/n answer. Anything other
// than y or yes is a no.
func (c *Console) Confirm(ctx context.Context, title, msg string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.in == nil {
		return false, nil
	}

	fmt.Fprintf(c.out, "%s: %s [y/N] ", c.tr(title), c.tr(msg))

	answers := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		if err != nil && line == "" {
			errs <- err
			return
		}
		answers <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errs:
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	case line := <-answers:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "ya":
			return true, nil
		default:
			return false, nil
		}
	}
}

func (c *Console) write(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(n.Level)), c.tr(n.Title), c.tr(n.Message))
	if n.Detail != "" {
		line += " (" + c.tr(n.Detail) + ")"
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) tr(msg string) string {
	return locale.Translate(c.printer, msg)
}
