// Package process implements local process control used to stop the
// telemetry simulator before teardown.
package process

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/mfgops/swctl/internal/core/ports"
)

// Manager finds and kills processes by their command line.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

var _ ports.ProcessManager = (*Manager)(nil)

// KillByCommand kills the first process whose command line contains the
// given substring. The current process is never a candidate.
func (m *Manager) KillByCommand(ctx context.Context, substring string) (int32, bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("listing processes: %w", err)
	}

	self := int32(os.Getpid())
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			// Processes can exit or deny access mid-scan.
			continue
		}
		if !strings.Contains(cmdline, substring) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			return p.Pid, true, fmt.Errorf("killing pid %d: %w", p.Pid, err)
		}
		return p.Pid, true, nil
	}
	return 0, false, nil
}
