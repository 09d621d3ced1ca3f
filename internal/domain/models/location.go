// internal/domain/models/location.go
package models

// Location is a destination that rooms belong to.
type Location struct {
	ID       int    `json:"id"`
	Name     string `json:"tenViTri"`
	Province string `json:"tinhThanh"`
	Country  string `json:"quocGia"`
	Image    string `json:"hinhAnh"`
}
