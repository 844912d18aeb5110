package ids

import "github.com/segmentio/ksuid"

// New returns a time-sortable identifier for notification events.
func New() string {
	return ksuid.New().String()
}
