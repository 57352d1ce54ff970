package notify

import (
	"context"
	"sync"

	"golang.org/x/text/message"

	"github.com/jafarshop/procurement/internal/locale"
)

// Recorder keeps notices in memory until they are drained. The console
// server returns them with each response; tests inspect them directly.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	printer *message.Printer
	answer  bool
}

// NewRecorder creates a recorder. A nil printer keeps message keys as is.
// Confirm always returns answer.
func NewRecorder(printer *message.Printer, answer bool) *Recorder {
	return &Recorder{
		printer: printer,
		answer:  answer,
	}
}

func (r *Recorder) Success(title, msg string) {
	r.add(Notice{Level: LevelSuccess, Title: title, Message: msg})
}

func (r *Recorder) Error(title, msg, detail string) {
	r.add(Notice{Level: LevelError, Title: title, Message: msg, Detail: detail})
}

func (r *Recorder) Warning(title, msg string) {
	r.add(Notice{Level: LevelWarning, Title: title, Message: msg})
}

func (r *Recorder) Info(title, msg string) {
	r.add(Notice{Level: LevelInfo, Title: title, Message: msg})
}

func (r *Recorder) Confirm(ctx context.Context, title, msg string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.add(Notice{Level: LevelInfo, Title: title, Message: msg})
	return r.answer, nil
}

// Notices returns a copy of everything recorded so far
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns and forgets everything recorded so far
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.notices
	r.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (r *Recorder) add(n Notice) {
	if r.printer != nil {
		n.Title = locale.Translate(r.printer, n.Title)
		n.Message = locale.Translate(r.printer, n.Message)
		if n.Detail != "" {
			n.Detail = locale.Translate(r.printer, n.Detail)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}
