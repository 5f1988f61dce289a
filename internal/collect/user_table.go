// Package collect implements the data collection core: the per-cycle
// collector, the process reconciler, and the uid→username cache.
package collect

import (
	"os/user"
	"strconv"

	"github.com/termstat/termstat/internal/models"
)

// UserTable caches uid→username lookups. It is the one piece of state that
// survives cycle boundaries, since uid bindings are stable for the life of a
// session. The cache is unbounded but bounded in practice: the uid space on a
// host is small and does not churn.
type UserTable struct {
	uidUserMapping map[int32]string
}

// NewUserTable returns an empty cache.
func NewUserTable() *UserTable {
	return &UserTable{uidUserMapping: make(map[int32]string)}
}

// Lookup resolves a uid to a username, populating the cache on miss. A failed
// resolution degrades to the numeric uid string rather than erroring; the
// fallback is cached too, so a missing passwd entry is not re-queried every
// cycle.
func (u *UserTable) Lookup(uid int32) string {
	if uid == models.NoUID {
		return ""
	}
	if name, ok := u.uidUserMapping[uid]; ok {
		return name
	}

	name := strconv.FormatInt(int64(uid), 10)
	if entry, err := user.LookupId(name); err == nil && entry.Username != "" {
		name = entry.Username
	}
	u.uidUserMapping[uid] = name

	return name
}

// Len reports the number of cached entries.
func (u *UserTable) Len() int { return len(u.uidUserMapping) }
