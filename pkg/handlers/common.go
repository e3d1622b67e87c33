package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"miniblog/pkg/categories"
	"miniblog/pkg/comments"
	"miniblog/pkg/locations"
	"miniblog/pkg/posts"

	"github.com/gorilla/mux"
)

type Response struct {
	Message string `json:"message"`
}

type CustomError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
}

type ErrorsResponse struct {
	Errors []*CustomError `json:"errors"`
}

type Author struct {
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

type LocationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CommentResponse struct {
	ID      interface{} `json:"id"`
	Author  *Author     `json:"author"`
	Body    string      `json:"body"`
	Created time.Time   `json:"created"`
}

type PostResponse struct {
	ID           interface{}        `json:"id"`
	Title        string             `json:"title"`
	Text         string             `json:"text"`
	Author       *Author            `json:"author"`
	Category     *CategoryResponse  `json:"category,omitempty"`
	Location     *LocationResponse  `json:"location,omitempty"`
	Image        string             `json:"image,omitempty"`
	Published    bool               `json:"published"`
	PubDate      time.Time          `json:"pubDate"`
	Created      time.Time          `json:"created"`
	CommentCount int64              `json:"commentCount"`
	Comments     []*CommentResponse `json:"comments,omitempty"`
}

type FeedResponse struct {
	Page  int             `json:"page"`
	Total int             `json:"total"`
	Posts []*PostResponse `json:"posts"`
}

func WriteResponse(w http.ResponseWriter, msg string, status int) {
	resp := &Response{Message: msg}
	res, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(status)
		return
	}

	w.WriteHeader(status)
	w.Write(res)
}

func writeErrorsResponse(w http.ResponseWriter, errors []*CustomError, status int) {
	errorsJSON, err := json.Marshal(&ErrorsResponse{Errors: errors})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	w.Write(errorsJSON)
}

func writeJSON(w http.ResponseWriter, v interface{}, status int) error {
	respBytes, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.WriteHeader(status)
	w.Write(respBytes)
	return nil
}

func ParseInt64Param(r *http.Request, name string) (int64, error) {
	varStr := mux.Vars(r)[name]
	val, err := strconv.ParseInt(varStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wrong id value: %v", varStr)
	}

	return val, nil
}

// pageParam reads the ?page query parameter, falling back to the first page
// on anything unparseable.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}

	return page
}

func mapPostResponse(p *posts.Post, commentCount int64, ur UsersRepo, cr CategoriesRepo, lr LocationsRepo) (*PostResponse, error) {
	author, err := ur.GetByID(p.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("author %d not found", p.AuthorID)
	}

	resp := &PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Text:         p.Text,
		Author:       &Author{Username: author.Username, ID: author.ID},
		Image:        p.Image,
		Published:    p.Published,
		PubDate:      p.PubDate,
		Created:      p.Created,
		CommentCount: commentCount,
	}

	if p.CategoryID != nil {
		cat, err := cr.GetByID(*p.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			resp.Category = &CategoryResponse{ID: cat.ID, Title: cat.Title, Description: cat.Description, Slug: cat.Slug}
		}
	}

	if p.LocationID != nil {
		loc, err := lr.GetByID(*p.LocationID)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			resp.Location = &LocationResponse{ID: loc.ID, Name: loc.Name}
		}
	}

	return resp, nil
}

// mapPostDetail is mapPostResponse plus the full comment list for the
// detail view.
func mapPostDetail(ctx context.Context, p *posts.Post, ur UsersRepo, cr CategoriesRepo, lr LocationsRepo, comr CommentsRepo) (*PostResponse, error) {
	postComments, err := comr.GetByPostID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	resp, err := mapPostResponse(p, int64(len(postComments)), ur, cr, lr)
	if err != nil {
		return nil, err
	}

	resp.Comments, err = mapCommentsResponse(postComments, ur)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func mapCategoryResponse(c *categories.Category) *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Title: c.Title, Description: c.Description, Slug: c.Slug}
}

func mapLocationResponse(l *locations.Location) *LocationResponse {
	return &LocationResponse{ID: l.ID, Name: l.Name}
}

func mapCommentsResponse(list []*comments.Comment, ur UsersRepo) ([]*CommentResponse, error) {
	result := make([]*CommentResponse, 0, len(list))
	for _, c := range list {
		author, err := ur.GetByID(c.AuthorID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, fmt.Errorf("author %d not found", c.AuthorID)
		}
		result = append(result, &CommentResponse{
			ID:      c.ID,
			Author:  &Author{Username: author.Username, ID: author.ID},
			Body:    c.Body,
			Created: c.Created,
		})
	}

	return result, nil
}
