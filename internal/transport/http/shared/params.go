package shared

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// PathID parses a positive int64 URL parameter.
func PathID(r *http.Request, name string) (int64, bool) {
	return parseID(chi.URLParam(r, name))
}

// QueryID parses an optional positive int64 query value; absent returns 0, true.
func QueryID(r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	return parseID(raw)
}

// QueryIDs collects ids from repeated and comma separated values (?institute=1,2&institute=3).
func QueryIDs(r *http.Request, name string) ([]int64, bool) {
	var out []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, ok := parseID(part)
			if !ok {
				return nil, false
			}
			out = append(out, id)
		}
	}
	return out, true
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
