package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// spinnerLine animates a single status line while a slow editor step runs:
// connecting to a remote backend, reading an import or rendering a preview.
// It uses the frames of the TUI spinner so both front ends look alike.
type spinnerLine struct {
	w       io.Writer
	message string
	style   spinner.Spinner

	mu      sync.Mutex
	width   int
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinnerLine(w io.Writer, message string) *spinnerLine {
	return &spinnerLine{
		w:       w,
		message: message,
		style:   spinner.MiniDot,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// start draws frames until ctx is done or end is called.
func (s *spinnerLine) start(ctx context.Context) {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.style.FPS)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(s.style.Frames[i%len(s.style.Frames)])
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinnerLine) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(frame)+1+len(s.message))
	fmt.Fprintf(s.w, "\r%s", line)
}

// end stops the animation and blanks the line. It is safe to call twice.
func (s *spinnerLine) end() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// withSpinner runs fn behind a spinner on w. fn receives a context that is
// cancelled when ctx is, and its error is returned unchanged.
func withSpinner(ctx context.Context, w io.Writer, message string, fn func(context.Context) error) error {
	s := newSpinnerLine(w, message)
	s.start(ctx)
	defer s.end()
	return fn(ctx)
}
