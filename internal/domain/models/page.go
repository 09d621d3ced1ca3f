// internal/domain/models/page.go
package models

// Page is one page of a paginated search ("phan-trang-tim-kiem") response.
type Page[T any] struct {
	PageIndex int    `json:"pageIndex"`
	PageSize  int    `json:"pageSize"`
	TotalRow  int    `json:"totalRow"`
	Keywords  string `json:"keywords"`
	Data      []T    `json:"data"`
}
