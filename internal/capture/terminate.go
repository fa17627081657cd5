package capture

import (
	"os"
	"os/exec"
	"strconv"
)

// terminators maps a host-platform tag to its termination procedure,
// resolved once per stop instead of branching inside each operation.
var terminators = map[string]func(*Supervisor, *Handle){
	"windows": terminateWindows,
	"darwin":  terminateGraceful,
	"linux":   terminateGraceful,
}

// terminateGraceful sends an interrupt so the recorder can flush and close
// the artifact; a failed signal escalates to a hard kill.
func terminateGraceful(s *Supervisor, handle *Handle) {
	if err := handle.cmd.Process.Signal(os.Interrupt); err != nil {
		s.logger.Warn("interrupt capture process failed", "pid", handle.pid, "error", err.Error())
		if err := handle.cmd.Process.Kill(); err != nil {
			s.logger.Warn("kill capture process failed", "pid", handle.pid, "error", err.Error())
		}
	}
}

// terminateWindows additionally force-kills the whole process tree; a single
// signal does not reliably reap descendants there.
func terminateWindows(s *Supervisor, handle *Handle) {
	if err := handle.cmd.Process.Kill(); err != nil {
		s.logger.Warn("kill capture process failed", "pid", handle.pid, "error", err.Error())
	}
	taskkill := exec.Command("taskkill", "/PID", strconv.Itoa(handle.pid), "/T", "/F")
	if err := taskkill.Run(); err != nil {
		s.logger.Warn("taskkill capture process tree failed", "pid", handle.pid, "error", err.Error())
	}
}
