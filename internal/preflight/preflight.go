package preflight

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"pydeploy/internal/config"
	"pydeploy/internal/logger"
)

var ErrPreflight = errors.New("preflight check failed")

var preLogs = logger.PackageLogger("🔎 PREFLIGHT")

const (
	minAvailableMemory = 200 << 20 // 200 MiB
	minFreeDisk        = 500 << 20 // 500 MiB
)

// Checker verifies host resources before anything mutates.
type Checker struct {
	minMemory uint64
	minDisk   uint64
}

func NewChecker() *Checker {
	return &Checker{minMemory: minAvailableMemory, minDisk: minFreeDisk}
}

// Check fails when the host lacks memory, disk space on the project
// filesystem, or a python3 interpreter.
func (c *Checker) Check(cfg *config.DeploymentConfig) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("%w: reading memory stats: %v", ErrPreflight, err)
	}
	if vm.Available < c.minMemory {
		return fmt.Errorf("%w: %d MiB memory available, need %d MiB",
			ErrPreflight, vm.Available>>20, c.minMemory>>20)
	}
	preLogs.Debug("memory available: %d MiB", vm.Available>>20)

	usage, err := disk.Usage(cfg.ProjectDir)
	if err != nil {
		return fmt.Errorf("%w: reading disk usage for %s: %v", ErrPreflight, cfg.ProjectDir, err)
	}
	if usage.Free < c.minDisk {
		return fmt.Errorf("%w: %d MiB free on %s, need %d MiB",
			ErrPreflight, usage.Free>>20, cfg.ProjectDir, c.minDisk>>20)
	}
	preLogs.Debug("disk free on %s: %d MiB", cfg.ProjectDir, usage.Free>>20)

	if _, err := exec.LookPath("python3"); err != nil {
		return fmt.Errorf("%w: python3 not found on PATH", ErrPreflight)
	}

	preLogs.Success("host checks passed")
	return nil
}
