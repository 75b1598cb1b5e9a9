//go:build darwin || linux

package ezffmpeg

import "syscall"

const (
	sigStop = syscall.SIGSTOP
	sigCont = syscall.SIGCONT
)

// signalProcs delivers a signal to every worker process of the job.
func (s *Scheduler) signalProcs(sig syscall.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, p := range s.procs {
		if err := p.Signal(sig); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
