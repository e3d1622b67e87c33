package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"miniblog/pkg/categories"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	Repo      CategoriesRepo
	PostsRepo PostsRepo
	Logger    *zap.SugaredLogger
}

type CategoryReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
	Published   *bool   `json:"published"`
}

func (c *CategoryReq) validate() []*CustomError {
	title := &Validator{value: c.Title, location: "body", field: "title"}
	titleErr := func() *CustomError {
		err := title.Required()
		if err != nil {
			return err
		}
		err = title.Empty()
		if err != nil {
			return err
		}
		return title.MaxLength(100)
	}()

	slug := &Validator{value: c.Slug, location: "body", field: "slug"}
	slugErr := func() *CustomError {
		err := slug.Required()
		if err != nil {
			return err
		}
		err = slug.Empty()
		if err != nil {
			return err
		}
		err = slug.MaxLength(64)
		if err != nil {
			return err
		}
		return slug.Matches("^[a-z0-9_-]+$")
	}()

	return mergeErrors(titleErr, slugErr)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.GetPublished()
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp := make([]*CategoryResponse, 0, len(items))
	for _, c := range items {
		resp = append(resp, mapCategoryResponse(c))
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req CategoryReq
	if err = json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if validationErrors := req.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	existing, err := h.Repo.GetBySlug(*req.Slug)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if existing != nil {
		validationError := &CustomError{Location: "body", Param: "slug", Value: *req.Slug, Msg: "already exists"}
		writeErrorsResponse(w, []*CustomError{validationError}, http.StatusUnprocessableEntity)
		return
	}

	category := &categories.Category{
		Title:     *req.Title,
		Slug:      *req.Slug,
		Published: true,
		Created:   time.Now(),
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Published != nil {
		category.Published = *req.Published
	}

	id, err := h.Repo.Add(category)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	category.ID = id

	writeJSON(w, mapCategoryResponse(category), http.StatusCreated)
}

// Delete detaches the category from every post before dropping it, so the
// posts themselves survive as uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInt64Param(r, "id")
	if err != nil {
		WriteResponse(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := h.Repo.GetByID(id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if category == nil {
		WriteResponse(w, "category not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, err = h.PostsRepo.ClearCategory(ctx, id); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ok, err := h.Repo.Delete(id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteResponse(w, "category not found", http.StatusNotFound)
		return
	}

	WriteResponse(w, "success", http.StatusOK)
}
