package process

import (
	"os"
	"strconv"
)

// MemoryLimitEnvVar names the environment variable read by MemoryLimitFromEnv
const MemoryLimitEnvVar = "SUBPROCESS_MEMORY_LIMIT_IN_MB"

// MemoryLimitFromEnv returns the memory limit in bytes configured through
// SUBPROCESS_MEMORY_LIMIT_IN_MB, or 0 if it isn't set.
func MemoryLimitFromEnv() (int64, error) {
	value := os.Getenv(MemoryLimitEnvVar)
	if value == "" {
		return 0, nil
	}

	megabytes, err := strconv.Atoi(value)
	if err != nil {
		return 0, configErrorf(err, "%s is not an integer", MemoryLimitEnvVar)
	}

	if megabytes < 0 {
		return 0, configErrorf(nil, "%s is negative: %d", MemoryLimitEnvVar, megabytes)
	}

	return int64(megabytes) * 1024 * 1024, nil
}
