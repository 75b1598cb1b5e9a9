package ezffmpeg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SchedulerState is the lifecycle state of a job.
type SchedulerState int32

const (
	StateIdle    SchedulerState = iota // not started
	StateRunning                       // processing
	StatePaused                        // worker processes stopped via signal
	StateEnded                         // finished successfully
	StateFailed                        // finished with an error
	StateAborted                       // stopped by Abort
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Scheduler executes a built Context: Start launches the FFmpeg worker
// processes, Wait blocks for the single terminal result. A scheduler runs
// one job; create a new one to run the context again.
type Scheduler struct {
	c  *Context
	id string

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	mu    sync.Mutex
	procs []*os.Process

	progMu   sync.Mutex
	progress Progress
}

// NewScheduler creates a scheduler for the given context.
func NewScheduler(c *Context) *Scheduler {
	return &Scheduler{
		c:    c,
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the job identifier used in this scheduler's log lines.
func (s *Scheduler) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

// Start launches the job. It returns immediately; use Wait for the
// terminal result. Cancelling ctx kills the job.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		defer cancel()
		var err error
		if s.c.hasPipelines() {
			err = s.runSplit(runCtx)
		} else {
			err = s.runSingle(runCtx)
		}
		s.finish(runCtx, err)
	}()
	return nil
}

// Wait blocks until the job reaches a terminal state and returns its
// single terminal error, nil on success.
func (s *Scheduler) Wait() error {
	if s.State() == StateIdle {
		return ErrNotStarted
	}
	<-s.done
	return s.err
}

// Pause suspends the worker processes (SIGSTOP). Unix only.
func (s *Scheduler) Pause() error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
		if s.State() == StateIdle {
			return ErrNotStarted
		}
		return nil
	}
	logger().Debug("pausing job", "job", s.id)
	return s.signalProcs(sigStop)
}

// Resume continues a paused job (SIGCONT).
func (s *Scheduler) Resume() error {
	if !s.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
		if s.State() == StateIdle {
			return ErrNotStarted
		}
		return nil
	}
	logger().Debug("resuming job", "job", s.id)
	return s.signalProcs(sigCont)
}

// Abort kills the job. Wait returns ErrAborted.
func (s *Scheduler) Abort() {
	st := s.State()
	if st != StateRunning && st != StatePaused {
		return
	}
	// a paused process cannot honor SIGKILL's companion signals until
	// continued
	if st == StatePaused {
		_ = s.signalProcs(sigCont)
	}
	s.state.Store(int32(StateAborted))
	if s.cancel != nil {
		s.cancel()
	}
}

// Progress returns the most recent progress snapshot.
func (s *Scheduler) Progress() Progress {
	s.progMu.Lock()
	defer s.progMu.Unlock()
	return s.progress
}

func (s *Scheduler) setProgress(p Progress) {
	s.progMu.Lock()
	s.progress = p
	s.progMu.Unlock()
	if s.c.onProgress != nil {
		s.c.onProgress(p)
	}
}

// finish records the terminal result exactly once.
func (s *Scheduler) finish(ctx context.Context, err error) {
	if s.State() == StateAborted {
		s.err = ErrAborted
	} else if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			err = ctx.Err()
		}
		s.err = err
		s.state.Store(int32(StateFailed))
	} else {
		s.state.Store(int32(StateEnded))
	}
	logger().Debug("job finished", "job", s.id, "state", s.State().String(), "err", s.err)
	close(s.done)
}

// registerProc makes a started process visible to Pause/Resume/Abort.
func (s *Scheduler) registerProc(p *os.Process) {
	s.mu.Lock()
	s.procs = append(s.procs, p)
	s.mu.Unlock()
}

// runSingle executes the whole job as one FFmpeg process.
func (s *Scheduler) runSingle(ctx context.Context) error {
	bin, err := s.c.resolveFFmpeg()
	if err != nil {
		return err
	}

	args := append(buildArgs(s.c), "-progress", "pipe:2", "-nostats")
	cmd := exec.CommandContext(ctx, bin, args...)

	for _, in := range s.c.inputs {
		if in.reader != nil {
			cmd.Stdin = in.reader
		}
	}
	for _, out := range s.c.outputs {
		if out.writer != nil {
			cmd.Stdout = out.writer
		}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	logger().Debug("starting ffmpeg", "job", s.id, "args", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return err
	}
	s.registerProc(cmd.Process)

	tail := s.consumeStderr(stderr, true)
	tail.wait() // stderr EOF precedes process exit; Wait must not race the pipe

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ProcessError{Name: "ffmpeg", ExitCode: exitErr.ExitCode(), Stderr: tail.String()}
		}
		return err
	}
	return nil
}

// consumeStderr splits a process's stderr into progress snapshots and an
// error tail. It returns the tail collector; reading happens on the
// calling goroutine's behalf and is finished once the process exits.
func (s *Scheduler) consumeStderr(r io.Reader, withProgress bool) *stderrTail {
	tail := newStderrTail()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var parser progressParser
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if withProgress {
				if snapshot, complete, consumed := parser.parseLine(line); consumed {
					if complete {
						s.setProgress(snapshot)
					}
					continue
				}
			}
			if strings.TrimSpace(line) != "" {
				tail.add(line)
			}
		}
	}()
	tail.wait = wg.Wait
	return tail
}

// stderrTail keeps the last lines of a process's error output for the
// terminal ProcessError.
type stderrTail struct {
	mu    sync.Mutex
	lines []string
	wait  func()
}

const stderrTailLines = 32

func newStderrTail() *stderrTail {
	return &stderrTail{wait: func() {}}
}

func (t *stderrTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) >= stderrTailLines {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:len(t.lines)-1]
	}
	t.lines = append(t.lines, line)
}

func (t *stderrTail) String() string {
	t.wait()
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
