// internal/domain/models/booking.go
package models

// Booking is a reservation of a room by a user. Dates are kept as the raw
// strings the API sends; parsing happens where they are displayed or grouped.
type Booking struct {
	ID       int    `json:"id"`
	RoomID   int    `json:"maPhong"`
	CheckIn  string `json:"ngayDen"`
	CheckOut string `json:"ngayDi"`
	Guests   int    `json:"soLuongKhach"`
	UserID   int    `json:"maNguoiDung"`
}
