package handlers

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestWriteResponseBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteResponse(w, "test_message", http.StatusOK)

	res, _ := ioutil.ReadAll(w.Body)
	if string(res) != `{"message":"test_message"}` {
		t.Errorf("unexpected response body: %s", res)
	}
}

func TestPageParam(t *testing.T) {
	cases := []struct {
		query    string
		expected int
	}{
		{query: "", expected: 1},
		{query: "?page=abc", expected: 1},
		{query: "?page=0", expected: 1},
		{query: "?page=-3", expected: 1},
		{query: "?page=7", expected: 7},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/posts/"+tc.query, nil)
		if page := pageParam(r); page != tc.expected {
			t.Errorf("query %q: expected page %d, got %d", tc.query, tc.expected, page)
		}
	}
}

func TestParseInt64Param(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/category/42", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42"})

	val, err := ParseInt64Param(r, "id")
	if err != nil || val != 42 {
		t.Errorf("expected 42, got %d (err %v)", val, err)
	}

	r = mux.SetURLVars(r, map[string]string{"id": "not-a-number"})
	if _, err = ParseInt64Param(r, "id"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
