package locations

import "time"

type Location struct {
	ID        int64
	Name      string
	Published bool
	Created   time.Time
}
