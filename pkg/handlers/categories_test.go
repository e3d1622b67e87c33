package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"miniblog/pkg/categories"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func newCategoryHandler(ctrl *gomock.Controller) (*CategoryHandler, *MockCategoriesRepo, *MockPostsRepo) {
	repo := NewMockCategoriesRepo(ctrl)
	postsRepo := NewMockPostsRepo(ctrl)
	h := &CategoryHandler{Repo: repo, PostsRepo: postsRepo, Logger: zap.NewNop().Sugar()}
	return h, repo, postsRepo
}

func TestListCategories(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, repo, _ := newCategoryHandler(ctrl)

	repo.EXPECT().GetPublished().Return([]*categories.Category{testCategory}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d but was %d", http.StatusOK, w.Code)
	}

	var resp []*CategoryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected decode error: %s", err.Error())
	}
	if len(resp) != 1 || resp[0].Slug != testCategory.Slug {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestCreateCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, repo, _ := newCategoryHandler(ctrl)

	repo.EXPECT().GetBySlug("food").Return(nil, nil)
	repo.EXPECT().Add(gomock.Any()).
		DoAndReturn(func(c *categories.Category) (int64, error) {
			if c.Title != "Food" || c.Slug != "food" || !c.Published {
				t.Errorf("unexpected category passed to repo: %v", c)
			}
			return int64(9), nil
		})

	body, _ := json.Marshal(map[string]interface{}{"title": "Food", "slug": "food"})
	r := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected %d but was %d", http.StatusCreated, w.Code)
	}

	var resp CategoryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected decode error: %s", err.Error())
	}
	if resp.ID != 9 || resp.Slug != "food" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, repo, _ := newCategoryHandler(ctrl)

	repo.EXPECT().GetBySlug(testCategory.Slug).Return(testCategory, nil)

	body, _ := json.Marshal(map[string]interface{}{"title": "Travel again", "slug": testCategory.Slug})
	r := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected %d but was %d", http.StatusUnprocessableEntity, w.Code)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	cases := []map[string]interface{}{
		{"slug": "food"},
		{"title": "Food"},
		{"title": "Food", "slug": "Has Spaces"},
	}

	for _, body := range cases {
		ctrl := gomock.NewController(t)
		h, _, _ := newCategoryHandler(ctrl)

		bodyBytes, _ := json.Marshal(body)
		r := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBuffer(bodyBytes))
		w := httptest.NewRecorder()
		h.Create(w, r)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %v: expected %d but was %d", body, http.StatusUnprocessableEntity, w.Code)
		}
	}
}

func TestDeleteCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, repo, postsRepo := newCategoryHandler(ctrl)

	repo.EXPECT().GetByID(travelID).Return(testCategory, nil)
	postsRepo.EXPECT().ClearCategory(gomock.Any(), travelID).Return(int64(2), nil)
	repo.EXPECT().Delete(travelID).Return(true, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/category/3", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "3"})
	w := httptest.NewRecorder()
	h.Delete(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d but was %d", http.StatusOK, w.Code)
	}
}

func TestDeleteMissingCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, repo, _ := newCategoryHandler(ctrl)

	repo.EXPECT().GetByID(int64(77)).Return(nil, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/category/77", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "77"})
	w := httptest.NewRecorder()
	h.Delete(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected %d but was %d", http.StatusNotFound, w.Code)
	}
}
