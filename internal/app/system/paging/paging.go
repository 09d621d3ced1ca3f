// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 10

// PageSizes are the choices offered by the page-size selector.
var PageSizes = []int{10, 20, 50}

// Params are the list controls carried in the query string:
// ?page=N&size=N&q=keyword. The search form also posts prev_size and
// prev_q so a new size or keyword sends the user back to page 1.
type Params struct {
	Page    int
	Size    int
	Keyword string
}

// Parse reads paging params from the request. Unknown sizes fall back to
// PageSize; a size that differs from prev_size, or a keyword that differs
// from prev_q, resets Page to 1.
func Parse(r *http.Request) Params {
	p := Params{
		Page:    positive(query.Get(r, "page"), 1),
		Size:    positive(query.Get(r, "size"), PageSize),
		Keyword: strings.TrimSpace(query.Get(r, "q")),
	}
	if !slices.Contains(PageSizes, p.Size) {
		p.Size = PageSize
	}
	if prev := query.Get(r, "prev_size"); prev != "" && prev != strconv.Itoa(p.Size) {
		p.Page = 1
	}
	if prev, ok := r.URL.Query()["prev_q"]; ok && strings.TrimSpace(prev[0]) != p.Keyword {
		p.Page = 1
	}
	return p
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Pager is the view model for a paged list footer.
type Pager struct {
	Page       int
	Size       int
	Keyword    string
	Total      int
	TotalPages int
	Start      int // 1-based first row shown (0 if none)
	End        int // 1-based last row shown (0 if none)
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Sizes      []int
}

// NewPager computes the footer for total rows. A page past the end is
// clamped to the last page.
func NewPager(p Params, total int) Pager {
	if p.Size < 1 {
		p.Size = PageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + p.Size - 1) / p.Size
	if pages == 0 {
		pages = 1
	}
	if p.Page > pages {
		p.Page = pages
	}

	pg := Pager{
		Page:       p.Page,
		Size:       p.Size,
		Keyword:    p.Keyword,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
		PrevPage:   max(p.Page-1, 1),
		NextPage:   min(p.Page+1, pages),
		Sizes:      PageSizes,
	}
	if total > 0 {
		pg.Start = (p.Page-1)*p.Size + 1
		pg.End = min(p.Page*p.Size, total)
	}
	return pg
}

// URL builds the list URL for page n, keeping size and keyword.
func (pg Pager) URL(base string, n int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("size", strconv.Itoa(pg.Size))
	if pg.Keyword != "" {
		q.Set("q", pg.Keyword)
	}
	return base + "?" + q.Encode()
}

// Slice returns the rows of page p from an in-memory list, for endpoints
// the API does not paginate. The returned Pager reflects any clamping.
func Slice[T any](rows []T, p Params) ([]T, Pager) {
	pg := NewPager(p, len(rows))
	if pg.Total == 0 {
		return []T{}, pg
	}
	return rows[pg.Start-1 : pg.End], pg
}
