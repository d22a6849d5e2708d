package state

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID builds a sortable identifier: base-36 millisecond timestamp plus a
// short random fragment so two entities created in the same millisecond
// still get distinct IDs.
func newID(now time.Time) string {
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + frag
}
