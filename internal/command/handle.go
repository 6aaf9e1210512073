package command

import "syscall"

// Handle identifies a detached pipeline by the pid of its first stage,
// which is also the pipeline's process group id. The server never
// terminates a pipeline through its handle; pipelines are expected to
// outlive server restarts.
type Handle struct {
	pid int
}

// NewHandle wraps an existing pid. Used by tests and by callers that
// rediscover a pipeline they did not spawn.
func NewHandle(pid int) *Handle {
	return &Handle{pid: pid}
}

// PID returns the pid of the pipeline's first stage.
func (h *Handle) PID() int {
	return h.pid
}

// Alive re-derives liveness from the wait status, never from cached state.
// A zombie waiting to be reaped counts as exited and is reaped here.
func (h *Handle) Alive() bool {
	if h == nil || h.pid <= 0 {
		return false
	}

	var status syscall.WaitStatus
	for {
		wpid, err := syscall.Wait4(h.pid, &status, syscall.WNOHANG, nil)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			// ECHILD: already reaped, or never our child
			return false
		}
		// wpid 0 means the child exists and has not changed state
		return wpid == 0
	}
}

// newProcessGroupAttr returns the SysProcAttr placing a child in the given
// process group, or in a fresh group led by itself when pgid is 0.
func newProcessGroupAttr(pgid int) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
}

// killProcessGroup force-kills every process in the group.
func killProcessGroup(pgid int) {
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
