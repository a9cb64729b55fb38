package api

import (
	"net/http"
	"strconv"
	"strings"

	"bookingflow/pkg/decorapi"
)

// ListParams reads PageIndex/PageSize and forwards every other query
// parameter as a backend filter.
func ListParams(r *http.Request) (decorapi.ListParams, bool) {
	q := r.URL.Query()
	lp := decorapi.ListParams{Filters: map[string]string{}}
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		v := strings.TrimSpace(vs[0])
		switch k {
		case "PageIndex", "pageIndex":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return decorapi.ListParams{}, false
			}
			lp.PageIndex = n
		case "PageSize", "pageSize":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				return decorapi.ListParams{}, false
			}
			lp.PageSize = n
		default:
			lp.Filters[k] = v
		}
	}
	return lp, true
}
