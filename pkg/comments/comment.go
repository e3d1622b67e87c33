package comments

import "time"

type Comment struct {
	ID       interface{} `bson:"_id,omitempty"`
	PostID   interface{} `bson:"postID"`
	AuthorID int64       `bson:"authorID"`
	Body     string      `bson:"body"`
	Created  time.Time   `bson:"created"`
}

func (c *Comment) Owner() int64 {
	return c.AuthorID
}
