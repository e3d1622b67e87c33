package categories

import "time"

type Category struct {
	ID          int64
	Title       string
	Description string
	Slug        string
	Published   bool
	Created     time.Time
}
