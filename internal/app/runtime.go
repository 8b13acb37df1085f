package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "PEOPLEFLOW_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether the process runs with relaxed middleware,
// used by automated suites that drive the HTTP surface directly.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode.Store(os.Getenv(testModeEnv) == "1")
	})
	return testMode.Load()
}

// RefreshTestMode re-reads the environment flag. Tests only.
func RefreshTestMode() {
	testMode.Store(os.Getenv(testModeEnv) == "1")
}
