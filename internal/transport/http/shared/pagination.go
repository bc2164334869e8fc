package shared

import (
	"net/http"
	"net/url"
	"strconv"
)

// Pagination is a limit/offset window read from the query string.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset, ignoring values that do not parse.
// The limit is clamped to maxLimit when one is given.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	page := Pagination{
		Limit:  queryInt(q, "limit", defaultLimit, 1),
		Offset: queryInt(q, "offset", 0, 0),
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

func queryInt(q url.Values, key string, fallback, floor int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < floor {
		return fallback
	}
	return v
}

// SetTotalCount reports the unpaged row count of a list response.
func SetTotalCount(w http.ResponseWriter, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
}
