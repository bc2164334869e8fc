package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 50, Offset: 0}},
		{"?limit=20&offset=40", Pagination{Limit: 20, Offset: 40}},
		{"?limit=1000", Pagination{Limit: 200, Offset: 0}},
		{"?limit=0&offset=-3", Pagination{Limit: 50, Offset: 0}},
		{"?limit=abc&offset=x", Pagination{Limit: 50, Offset: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got := ParsePagination(httptest.NewRequest(http.MethodGet, "/api/notifications"+tc.query, nil), 50, 200)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSetTotalCount(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTotalCount(rec, 17)
	if rec.Header().Get("X-Total-Count") != "17" {
		t.Fatalf("header = %q", rec.Header().Get("X-Total-Count"))
	}
}
