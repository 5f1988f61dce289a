package services

import (
	"fmt"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// KillProcess sends a signal to the given pid. It is an action capability for
// the UI layer and takes no part in the collection loop.
func KillProcess(pid int32, sig syscall.Signal) error {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := proc.SendSignal(sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}
