// Package access holds the ownership policy for mutating operations. Posts
// and comments may only be edited or deleted by their author; there is no
// role hierarchy and no admin override at this layer.
package access

import (
	"miniblog/pkg/session"
)

// Owned is implemented by entities that belong to a single user.
type Owned interface {
	Owner() int64
}

// CanMutate reports whether actor may edit or delete e. Anonymous actors
// never can.
func CanMutate(actor *session.User, e Owned) bool {
	if actor == nil || e == nil {
		return false
	}

	return actor.ID == e.Owner()
}
