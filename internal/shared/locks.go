package shared

import "fmt"

// TeamLockKey builds redis keys serialising hierarchy edits per tenant.
// Lock keys live under lock:, outside every cached-read namespace, so a
// cache invalidation sweep can never release a held lock.
func TeamLockKey(tenantID int64) string {
	return fmt.Sprintf("lock:team:tenant:%d", tenantID)
}
