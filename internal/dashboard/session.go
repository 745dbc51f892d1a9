package dashboard

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Options configures Start. The zero value targets the process terminal.
type Options struct {
	// Input and Output override the terminal endpoints, mainly for tests.
	// When Output is nil the process stdout must be an interactive terminal.
	Input  io.Reader
	Output io.Writer
}

// Session is one live dashboard. Producers share it freely: posting is safe
// from any goroutine, never blocks, and may race Stop without corrupting the
// terminal.
type Session struct {
	queue   *eventQueue
	program *tea.Program

	stopOnce sync.Once
	done     chan struct{}

	mu     sync.Mutex
	final  *model
	runErr error
}

// Start switches the terminal into raw alternate-screen mode with mouse
// capture and spawns the render loop. The returned session is live until
// Stop. Start fails when the output is not an interactive terminal.
func Start(opts Options) (*Session, error) {
	return start(opts)
}

func start(opts Options, extra ...tea.ProgramOption) (*Session, error) {
	if opts.Output == nil && !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("stdout is not an interactive terminal")
	}

	queue := newEventQueue()

	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if opts.Input != nil {
		teaOpts = append(teaOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(opts.Output))
	}
	teaOpts = append(teaOpts, extra...)

	s := &Session{
		queue:   queue,
		program: tea.NewProgram(newModel(queue), teaOpts...),
		done:    make(chan struct{}),
	}

	// The program owns the device for its whole lifetime. It restores the
	// terminal exactly once, when Run returns, regardless of why it returned.
	go func() {
		defer close(s.done)
		finalModel, err := s.program.Run()
		queue.Close()

		s.mu.Lock()
		if m, ok := finalModel.(model); ok {
			s.final = &m
		}
		s.runErr = err
		s.mu.Unlock()
	}()

	return s, nil
}

// PostSnapshot hands a result snapshot to the render loop. It never blocks;
// a post racing shutdown is dropped silently.
func (s *Session) PostSnapshot(snap Snapshot) {
	s.queue.Post(snapshotMsg{snap: snap})
}

// PostLog hands one log payload to the render loop. Multi-line text becomes
// one pane line per line.
func (s *Session) PostLog(text string, isError bool) {
	s.queue.Post(logMsg{line: LogLine{Text: text, IsError: isError}})
}

// Stop ends the session. The stop sentinel queues behind everything the
// caller already posted, so prior events still fold before the loop exits.
// Stop returns once the terminal is restored; extra or concurrent calls wait
// for the same shutdown and return the same result.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.queue.Post(stopMsg{})
	})
	<-s.done
	return s.err()
}

// Wait blocks until the render loop exits, normally through Stop or early on
// a device failure, and returns the loop's error.
func (s *Session) Wait() error {
	<-s.done
	return s.err()
}

func (s *Session) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// finalState exposes the folded state after shutdown for inspection in
// tests. It is nil until the render loop has exited.
func (s *Session) finalState() *model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}
