// Package feed builds the post listings: it combines visibility filtering,
// ordering by publish date, live comment counts and pagination.
package feed

import (
	"context"
	"errors"
	"sort"
	"time"

	"miniblog/pkg/categories"
	"miniblog/pkg/posts"
	"miniblog/pkg/session"
	"miniblog/pkg/user"
)

// PageSize is the fixed number of posts per feed page.
const PageSize = 10

// ErrNotFound covers both truly absent entities and entities hidden from the
// current viewer. The two cases are indistinguishable on purpose so that the
// existence of unpublished content is not leaked.
var ErrNotFound = errors.New("not found")

type PostsRepo interface {
	GetPublished(ctx context.Context, now time.Time) ([]*posts.Post, error)
	GetPublishedByCategory(ctx context.Context, categoryID int64, now time.Time) ([]*posts.Post, error)
	GetByAuthorID(ctx context.Context, authorID int64) ([]*posts.Post, error)
	GetByID(ctx context.Context, id interface{}) (*posts.Post, error)
}

type CategoriesRepo interface {
	GetBySlug(slug string) (*categories.Category, error)
	PublishedIDs() (map[int64]bool, error)
}

type CommentsRepo interface {
	CountByPostID(ctx context.Context, postID interface{}) (int64, error)
}

type UsersRepo interface {
	GetByUsername(username string) (*user.User, error)
}

// Item is a feed entry: a post plus its comment count at query time.
type Item struct {
	Post         *posts.Post
	CommentCount int64
}

type Page struct {
	Items  []*Item
	Number int
	Total  int
}

type Service struct {
	Posts      PostsRepo
	Categories CategoriesRepo
	Comments   CommentsRepo
	Users      UsersRepo

	// Now is replaceable in tests; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Index is the global feed: all publicly visible posts.
func (s *Service) Index(ctx context.Context, pageNum int) (*Page, error) {
	list, err := s.Posts.GetPublished(ctx, s.now())
	if err != nil {
		return nil, err
	}

	list, err = s.publicOnly(list)
	if err != nil {
		return nil, err
	}

	return s.page(ctx, list, pageNum)
}

// Category resolves a category by slug and lists its publicly visible posts.
// A hidden category is reported exactly like a missing one.
func (s *Service) Category(ctx context.Context, slug string, pageNum int) (*categories.Category, *Page, error) {
	cat, err := s.Categories.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	if cat == nil || !cat.Published {
		return nil, nil, ErrNotFound
	}

	list, err := s.Posts.GetPublishedByCategory(ctx, cat.ID, s.now())
	if err != nil {
		return nil, nil, err
	}

	pg, err := s.page(ctx, list, pageNum)
	if err != nil {
		return nil, nil, err
	}

	return cat, pg, nil
}

// Profile lists a user's posts. The owner sees everything they wrote,
// drafts and scheduled posts included; everyone else gets the public subset.
func (s *Service) Profile(ctx context.Context, viewer *session.User, username string, pageNum int) (*user.User, *Page, error) {
	author, err := s.Users.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if author == nil {
		return nil, nil, ErrNotFound
	}

	list, err := s.Posts.GetByAuthorID(ctx, author.ID)
	if err != nil {
		return nil, nil, err
	}

	if viewer == nil || viewer.ID != author.ID {
		list, err = s.publicOnly(list)
		if err != nil {
			return nil, nil, err
		}
	}

	pg, err := s.page(ctx, list, pageNum)
	if err != nil {
		return nil, nil, err
	}

	return author, pg, nil
}

// Detail is the single-post lookup. The author always gets their post;
// any other viewer gets it only while it is publicly visible.
func (s *Service) Detail(ctx context.Context, viewer *session.User, id interface{}) (*posts.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if viewer != nil && viewer.ID == p.AuthorID {
		return p, nil
	}

	published, err := s.Categories.PublishedIDs()
	if err != nil {
		return nil, err
	}
	if !p.PublicAt(s.now(), published) {
		return nil, ErrNotFound
	}

	return p, nil
}

// publicOnly drops posts that are not publicly visible right now, using the
// live set of published categories.
func (s *Service) publicOnly(list []*posts.Post) ([]*posts.Post, error) {
	published, err := s.Categories.PublishedIDs()
	if err != nil {
		return nil, err
	}

	now := s.now()
	visible := make([]*posts.Post, 0, len(list))
	for _, p := range list {
		if p.PublicAt(now, published) {
			visible = append(visible, p)
		}
	}

	return visible, nil
}

// page orders by publish date descending and slices out one page, counting
// comments only for the items actually returned. A page past the end yields
// an empty item list, never an error.
func (s *Service) page(ctx context.Context, list []*posts.Post, number int) (*Page, error) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PubDate.After(list[j].PubDate)
	})

	if number < 1 {
		number = 1
	}

	total := len(list)
	from := (number - 1) * PageSize
	if from > total {
		from = total
	}
	to := from + PageSize
	if to > total {
		to = total
	}

	items := make([]*Item, 0, to-from)
	for _, p := range list[from:to] {
		count, err := s.Comments.CountByPostID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, &Item{Post: p, CommentCount: count})
	}

	return &Page{Items: items, Number: number, Total: total}, nil
}
