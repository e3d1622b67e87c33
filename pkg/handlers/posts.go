package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"miniblog/pkg/access"
	"miniblog/pkg/categories"
	"miniblog/pkg/feed"
	"miniblog/pkg/locations"
	"miniblog/pkg/posts"
	"miniblog/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type PostHandler struct {
	Feed           *feed.Service
	PostsRepo      PostsRepo
	CommentsRepo   CommentsRepo
	UsersRepo      UsersRepo
	CategoriesRepo CategoriesRepo
	LocationsRepo  LocationsRepo
	Logger         *zap.SugaredLogger
}

type PostsRepo interface {
	feed.PostsRepo
	Add(ctx context.Context, p *posts.Post) (interface{}, error)
	Update(ctx context.Context, p *posts.Post) (bool, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error)
	ClearCategory(ctx context.Context, categoryID int64) (int64, error)
	ClearLocation(ctx context.Context, locationID int64) (int64, error)

	ParseID(in string) (interface{}, error)
}

type CategoriesRepo interface {
	GetByID(id int64) (*categories.Category, error)
	GetBySlug(slug string) (*categories.Category, error)
	GetPublished() ([]*categories.Category, error)
	PublishedIDs() (map[int64]bool, error)
	Add(c *categories.Category) (int64, error)
	Delete(id int64) (bool, error)
}

type LocationsRepo interface {
	GetByID(id int64) (*locations.Location, error)
	GetAll() ([]*locations.Location, error)
	Add(l *locations.Location) (int64, error)
	Delete(id int64) (bool, error)
}

type PostReq struct {
	Title      *string    `json:"title"`
	Text       *string    `json:"text"`
	Image      *string    `json:"image"`
	Published  *bool      `json:"published"`
	PubDate    *time.Time `json:"pubDate"`
	CategoryID *int64     `json:"categoryID"`
	LocationID *int64     `json:"locationID"`
}

func (p *PostReq) validate() []*CustomError {
	title := &Validator{value: p.Title, location: "body", field: "title"}
	titleErr := func() *CustomError {
		err := title.Required()
		if err != nil {
			return err
		}
		err = title.Empty()
		if err != nil {
			return err
		}
		err = title.MaxLength(100)
		if err != nil {
			return err
		}
		return title.Custom(func(value string) bool {
			return strings.TrimSpace(value) == value
		}, "cannot start or end with whitespace")
	}()

	text := &Validator{value: p.Text, location: "body", field: "text"}
	textErr := func() *CustomError {
		err := text.Required()
		if err != nil {
			return err
		}
		return text.MinLength(4)
	}()

	var imageErr *CustomError
	if p.Image != nil && *p.Image != "" {
		image := &Validator{value: p.Image, location: "body", field: "image"}
		imageErr = image.URL()
	}

	return mergeErrors(titleErr, textErr, imageErr)
}

// Index is the global feed of publicly visible posts.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	page, err := h.Feed.Index(ctx, pageParam(r))
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writeFeed(w, page)
}

func (h *PostHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["category"]

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	_, page, err := h.Feed.Category(ctx, slug, pageParam(r))
	if err == feed.ErrNotFound {
		WriteResponse(w, "category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writeFeed(w, page)
}

func (h *PostHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	viewer := session.UserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	_, page, err := h.Feed.Profile(ctx, viewer, username, pageParam(r))
	if err == feed.ErrNotFound {
		WriteResponse(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writeFeed(w, page)
}

// GetByID serves the detail view. Hidden posts come back as 404 for anyone
// but their author.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	viewer := session.UserFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.Feed.Detail(ctx, viewer, id)
	if err == feed.ErrNotFound {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp, err := mapPostDetail(ctx, post, h.UsersRepo, h.CategoriesRepo, h.LocationsRepo, h.CommentsRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, validationErrors, err := h.readPostReq(r)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	post := &posts.Post{
		AuthorID:   sess.User.ID,
		CategoryID: req.CategoryID,
		LocationID: req.LocationID,
		Title:      *req.Title,
		Text:       *req.Text,
		Published:  true,
		PubDate:    time.Now(),
		Created:    time.Now(),
	}
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id, err := h.PostsRepo.Add(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	post.ID = id

	resp, err := mapPostResponse(post, 0, h.UsersRepo, h.CategoriesRepo, h.LocationsRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, http.StatusCreated)
}

// Update edits a post in place. The author stays the author: only title,
// text, image, publish state, publish date, category and location move.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := h.PostsRepo.ParseID(idStr)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	actor := session.UserFromContext(r.Context())
	if !access.CanMutate(actor, post) {
		redirectToPost(w, r, idStr)
		return
	}

	req, validationErrors, err := h.readPostReq(r)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	post.Title = *req.Title
	post.Text = *req.Text
	post.CategoryID = req.CategoryID
	post.LocationID = req.LocationID
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}

	ok, err := h.PostsRepo.Update(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	count, err := h.CommentsRepo.CountByPostID(ctx, post.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp, err := mapPostResponse(post, count, h.UsersRepo, h.CategoriesRepo, h.LocationsRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// Delete removes a post and all comments on it.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := h.PostsRepo.ParseID(idStr)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	actor := session.UserFromContext(r.Context())
	if !access.CanMutate(actor, post) {
		redirectToPost(w, r, idStr)
		return
	}

	if _, err = h.CommentsRepo.DeleteByPostID(ctx, id); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ok, err := h.PostsRepo.Delete(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	WriteResponse(w, "success", http.StatusOK)
}

func (h *PostHandler) readPostReq(r *http.Request) (*PostReq, []*CustomError, error) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, nil, err
	}

	var req PostReq
	if err = json.Unmarshal(body, &req); err != nil {
		return nil, nil, err
	}

	validationErrors := req.validate()
	if len(validationErrors) > 0 {
		return nil, validationErrors, nil
	}

	if req.CategoryID != nil {
		cat, err := h.CategoriesRepo.GetByID(*req.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		if cat == nil {
			validationErrors = append(validationErrors,
				&CustomError{Location: "body", Param: "categoryID", Msg: "unknown category"})
		}
	}

	if req.LocationID != nil {
		loc, err := h.LocationsRepo.GetByID(*req.LocationID)
		if err != nil {
			return nil, nil, err
		}
		if loc == nil {
			validationErrors = append(validationErrors,
				&CustomError{Location: "body", Param: "locationID", Msg: "unknown location"})
		}
	}

	return &req, validationErrors, nil
}

func (h *PostHandler) writeFeed(w http.ResponseWriter, page *feed.Page) {
	resp := &FeedResponse{Page: page.Number, Total: page.Total, Posts: make([]*PostResponse, 0, len(page.Items))}
	for _, item := range page.Items {
		mapped, err := mapPostResponse(item.Post, item.CommentCount, h.UsersRepo, h.CategoriesRepo, h.LocationsRepo)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp.Posts = append(resp.Posts, mapped)
	}

	writeJSON(w, resp, http.StatusOK)
}

// redirectToPost is the ownership-failure fallback: no mutation, no hard
// error, just back to the read-only detail view.
func redirectToPost(w http.ResponseWriter, r *http.Request, postID string) {
	http.Redirect(w, r, "/api/post/"+postID, http.StatusFound)
}
