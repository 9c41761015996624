//go:build linux

package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/cgroups/v3/cgroup2"
)

const cgroupRoot = "/sys/fs/cgroup"

// cgroupManager confines a child to a cgroup v2 group with a memory limit
type cgroupManager struct {
	manager        *cgroup2.Manager
	group          string
	initialOOMKill uint64
}

// newCgroupManager moves pid into a fresh cgroup capped at memoryLimitBytes
func newCgroupManager(memoryLimitBytes int64, pid int) (*cgroupManager, error) {
	group := fmt.Sprintf("/subprocess-%d-%d", pid, time.Now().UnixNano())

	resources := &cgroup2.Resources{
		Memory: &cgroup2.Memory{
			Max: &memoryLimitBytes,
		},
	}

	manager, err := cgroup2.NewManager(cgroupRoot, group, resources)
	if err != nil {
		return nil, fmt.Errorf("failed to create cgroup: %w", err)
	}

	if err := manager.AddProc(uint64(pid)); err != nil {
		manager.Delete()
		return nil, fmt.Errorf("failed to add process to cgroup: %w", err)
	}

	return &cgroupManager{
		manager:        manager,
		group:          group,
		initialOOMKill: readOOMKillCount(group),
	}, nil
}

// wasOOMKilled reports whether the kernel's OOM killer fired inside the group
func (c *cgroupManager) wasOOMKilled() bool {
	if c.manager == nil {
		return false
	}

	return readOOMKillCount(c.group) > c.initialOOMKill
}

func (c *cgroupManager) cleanup() error {
	if c.manager == nil {
		return nil
	}

	err := c.manager.Delete()
	c.manager = nil

	return err
}

// readOOMKillCount reads the oom_kill counter from memory.events
func readOOMKillCount(group string) uint64 {
	data, err := os.ReadFile(filepath.Join(cgroupRoot, group, "memory.events"))
	if err != nil {
		return 0
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "oom_kill" {
			count, _ := strconv.ParseUint(fields[1], 10, 64)
			return count
		}
	}

	return 0
}
