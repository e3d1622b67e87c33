package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"miniblog/pkg/access"
	"miniblog/pkg/comments"
	"miniblog/pkg/feed"
	"miniblog/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CommentHandler struct {
	Feed           *feed.Service
	CommentsRepo   CommentsRepo
	PostsRepo      PostsRepo
	UsersRepo      UsersRepo
	CategoriesRepo CategoriesRepo
	LocationsRepo  LocationsRepo
	Logger         *zap.SugaredLogger
}

type CommentsRepo interface {
	feed.CommentsRepo
	GetByPostID(ctx context.Context, postID interface{}) ([]*comments.Comment, error)
	GetByID(ctx context.Context, id interface{}) (*comments.Comment, error)
	Add(ctx context.Context, c *comments.Comment) (interface{}, error)
	Update(ctx context.Context, id interface{}, body string) (bool, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteByPostID(ctx context.Context, postID interface{}) (int64, error)
	DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error)

	ParseID(in string) (interface{}, error)
}

type CommentReq struct {
	Comment *string `json:"comment"`
}

func (c *CommentReq) validate() []*CustomError {
	comment := &Validator{value: c.Comment, location: "body", field: "comment"}
	commentErr := func() *CustomError {
		err := comment.Required()
		if err != nil {
			return err
		}
		return comment.Empty()
	}()

	return mergeErrors(commentErr)
}

// Add attaches a comment to a post. The post has to be visible to the actor:
// commenting on somebody's draft is reported as the draft not existing.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req CommentReq
	if err = json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if validationErrors := req.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.Feed.Detail(ctx, sess.User, postID)
	if err == feed.ErrNotFound {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	comment := &comments.Comment{
		PostID:   post.ID,
		AuthorID: sess.User.ID,
		Body:     *req.Comment,
		Created:  time.Now(),
	}

	if _, err = h.CommentsRepo.Add(ctx, comment); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writePostDetail(ctx, w, post.ID, http.StatusCreated)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	postIDStr := mux.Vars(r)["post_id"]
	commentID, err := h.CommentsRepo.ParseID(mux.Vars(r)["comment_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	comment, err := h.CommentsRepo.GetByID(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if comment == nil {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	actor := session.UserFromContext(r.Context())
	if !access.CanMutate(actor, comment) {
		redirectToPost(w, r, postIDStr)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req CommentReq
	if err = json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if validationErrors := req.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	ok, err := h.CommentsRepo.Update(ctx, commentID, *req.Comment)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	h.writePostDetail(ctx, w, comment.PostID, http.StatusOK)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postIDStr := mux.Vars(r)["post_id"]
	commentID, err := h.CommentsRepo.ParseID(mux.Vars(r)["comment_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	comment, err := h.CommentsRepo.GetByID(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if comment == nil {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	actor := session.UserFromContext(r.Context())
	if !access.CanMutate(actor, comment) {
		redirectToPost(w, r, postIDStr)
		return
	}

	ok, err := h.CommentsRepo.Delete(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	h.writePostDetail(ctx, w, comment.PostID, http.StatusOK)
}

func (h *CommentHandler) writePostDetail(ctx context.Context, w http.ResponseWriter, postID interface{}, status int) {
	post, err := h.PostsRepo.GetByID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	resp, err := mapPostDetail(ctx, post, h.UsersRepo, h.CategoriesRepo, h.LocationsRepo, h.CommentsRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, status)
}
