package posts

import (
	"time"
)

type Post struct {
	ID         interface{} `bson:"_id,omitempty"`
	AuthorID   int64       `bson:"authorID"`
	CategoryID *int64      `bson:"categoryID,omitempty"`
	LocationID *int64      `bson:"locationID,omitempty"`
	Title      string      `bson:"title"`
	Text       string      `bson:"text"`
	Image      string      `bson:"image,omitempty"`
	Published  bool        `bson:"published"`
	PubDate    time.Time   `bson:"pubDate"`
	Created    time.Time   `bson:"created"`
}

func (p *Post) Owner() int64 {
	return p.AuthorID
}

// PublicAt reports whether the post is visible to the general public at the
// given moment: the post itself is published, its publish date has passed and
// its category, if any, is currently in publishedCategories. Category state is
// checked live, an unpublished category hides its posts immediately.
func (p *Post) PublicAt(now time.Time, publishedCategories map[int64]bool) bool {
	if !p.Published || p.PubDate.After(now) {
		return false
	}
	if p.CategoryID == nil {
		return true
	}

	return publishedCategories[*p.CategoryID]
}
