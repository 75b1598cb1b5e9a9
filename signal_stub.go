//go:build !darwin && !linux

package ezffmpeg

import "syscall"

const (
	sigStop = syscall.Signal(0)
	sigCont = syscall.Signal(0)
)

// Pause/Resume rely on SIGSTOP/SIGCONT, which this platform lacks.
func (s *Scheduler) signalProcs(syscall.Signal) error {
	return ErrNotSupported
}
