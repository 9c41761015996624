//go:build !linux

package process

// cgroupManager is a no-op outside Linux, memory limits are not enforced there
type cgroupManager struct{}

func newCgroupManager(memoryLimitBytes int64, pid int) (*cgroupManager, error) {
	return &cgroupManager{}, nil
}

func (c *cgroupManager) wasOOMKilled() bool {
	return false
}

func (c *cgroupManager) cleanup() error {
	return nil
}
