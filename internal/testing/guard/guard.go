// Package guard forces test mode for suites that import it, so any
// binary entrypoint touched during the run skips runtime startup.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PEOPLEFLOW_TEST_MODE") == "" {
			_ = os.Setenv("PEOPLEFLOW_TEST_MODE", "1")
		}
	})
}
