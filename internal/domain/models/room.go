// internal/domain/models/room.go
package models

// Room is a rentable listing. Bedrooms may be absent in the API payload,
// in which case it decodes as zero.
type Room struct {
	ID             int    `json:"id"`
	Name           string `json:"tenPhong"`
	Guests         int    `json:"khach"`
	Bedrooms       int    `json:"phongNgu"`
	Beds           int    `json:"giuong"`
	Bathrooms      int    `json:"phongTam"`
	Description    string `json:"moTa"`
	Price          int    `json:"giaTien"`
	WashingMachine bool   `json:"mayGiat"`
	Iron           bool   `json:"banLa"`
	TV             bool   `json:"tivi"`
	AirCon         bool   `json:"dieuHoa"`
	Wifi           bool   `json:"wifi"`
	Kitchen        bool   `json:"bep"`
	Parking        bool   `json:"doXe"`
	Pool           bool   `json:"hoBoi"`
	IroningBoard   bool   `json:"banUi"`
	LocationID     int    `json:"maViTri"`
	Image          string `json:"hinhAnh"`
}

// Amenities lists the enabled amenity labels in display order.
func (r Room) Amenities() []string {
	var out []string
	add := func(on bool, label string) {
		if on {
			out = append(out, label)
		}
	}
	add(r.WashingMachine, "Washing machine")
	add(r.Iron, "Iron")
	add(r.TV, "TV")
	add(r.AirCon, "Air conditioning")
	add(r.Wifi, "Wifi")
	add(r.Kitchen, "Kitchen")
	add(r.Parking, "Parking")
	add(r.Pool, "Pool")
	add(r.IroningBoard, "Ironing board")
	return out
}
