package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/gsalaz98/lean-tui/internal/diag"
	"github.com/gsalaz98/lean-tui/internal/logging"
)

// Runner launches the engine process and adapts its stdio into the feed:
// stdout carries the JSON frames, stderr lines surface as error log lines.
type Runner struct {
	command []string

	mu       sync.RWMutex
	running  bool
	stopping bool
	cmd      *exec.Cmd
}

// NewRunner wraps the engine command line. The first element is the binary.
func NewRunner(command []string) *Runner {
	return &Runner{command: command}
}

// Run starts the engine and blocks until its stdout feed ends and the process
// exits. Stop may run concurrently to end it early; an early Stop or ctx
// cancellation is a clean shutdown, not an error.
func (r *Runner) Run(ctx context.Context, sink Sink, recorder *diag.Recorder) error {
	if len(r.command) == 0 {
		return fmt.Errorf("engine command is required")
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("engine already running")
	}

	cmd := exec.Command(r.command[0], r.command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("start engine: %w", err)
	}
	r.cmd = cmd
	r.running = true
	r.mu.Unlock()

	logging.Infof("engine started: pid %d", cmd.Process.Pid)

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
		for scanner.Scan() {
			sink.PostLog(scanner.Text(), true)
		}
	}()

	runErr := Run(ctx, stdout, sink, recorder)

	<-stderrDone
	waitErr := cmd.Wait()

	r.mu.Lock()
	stopped := r.stopping
	r.running = false
	r.stopping = false
	r.cmd = nil
	r.mu.Unlock()

	if ctx.Err() != nil || stopped {
		return nil
	}
	if runErr != nil {
		return runErr
	}
	if waitErr != nil {
		return fmt.Errorf("engine exited: %w", waitErr)
	}
	return nil
}

// Stop ends the engine: interrupt first, then a short drain, then kill. It is
// idempotent and safe to call without a running process.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cmd := r.cmd
	running := r.running
	if running {
		r.stopping = true
	}
	r.mu.Unlock()

	if !running || cmd == nil || cmd.Process == nil {
		return nil
	}

	_ = cmd.Process.Signal(os.Interrupt)
	if r.drained(2 * time.Second) {
		return nil
	}

	_ = cmd.Process.Kill()
	if r.drained(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("engine did not exit after kill")
}

// drained polls until Run has observed process exit or the window closes.
func (r *Runner) drained(window time.Duration) bool {
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		r.mu.RLock()
		running := r.running
		r.mu.RUnlock()
		if !running {
			return true
		}
		time.Sleep(75 * time.Millisecond)
	}
	return false
}
