package apiclient

import (
	"net/url"
	"strconv"
	"strings"
)

func pageQuery(pageIndex, pageSize int, keyword string) url.Values {
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	q := url.Values{}
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))
	if kw := strings.TrimSpace(keyword); kw != "" {
		q.Set("keyword", kw)
	}
	return q
}

func idPath(prefix string, id int) string {
	return prefix + "/" + strconv.Itoa(id)
}
