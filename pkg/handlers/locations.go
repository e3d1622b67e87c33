package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"miniblog/pkg/locations"

	"go.uber.org/zap"
)

type LocationHandler struct {
	Repo      LocationsRepo
	PostsRepo PostsRepo
	Logger    *zap.SugaredLogger
}

type LocationReq struct {
	Name      *string `json:"name"`
	Published *bool   `json:"published"`
}

func (l *LocationReq) validate() []*CustomError {
	name := &Validator{value: l.Name, location: "body", field: "name"}
	nameErr := func() *CustomError {
		err := name.Required()
		if err != nil {
			return err
		}
		err = name.Empty()
		if err != nil {
			return err
		}
		return name.MaxLength(100)
	}()

	return mergeErrors(nameErr)
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.GetAll()
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp := make([]*LocationResponse, 0, len(items))
	for _, l := range items {
		resp = append(resp, mapLocationResponse(l))
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var req LocationReq
	if err = json.Unmarshal(body, &req); err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	if validationErrors := req.validate(); len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusUnprocessableEntity)
		return
	}

	location := &locations.Location{
		Name:      *req.Name,
		Published: true,
		Created:   time.Now(),
	}
	if req.Published != nil {
		location.Published = *req.Published
	}

	id, err := h.Repo.Add(location)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	location.ID = id

	writeJSON(w, mapLocationResponse(location), http.StatusCreated)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInt64Param(r, "id")
	if err != nil {
		WriteResponse(w, "invalid location id", http.StatusBadRequest)
		return
	}

	location, err := h.Repo.GetByID(id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if location == nil {
		WriteResponse(w, "location not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, err = h.PostsRepo.ClearLocation(ctx, id); err != nil {
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
		WriteResponse(w, "location not found", http.StatusNotFound)
		return
	}

	WriteResponse(w, "success", http.StatusOK)
}
