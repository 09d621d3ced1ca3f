package charts

import (
	"strconv"

	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/domain/models"
)

// Dimension names, used in logs, metrics and the JSON payload.
const (
	DimUsers     = "users"
	DimRooms     = "rooms"
	DimBookings  = "bookings"
	DimLocations = "locations"
)

// UnspecifiedProvince labels locations with no province.
const UnspecifiedProvince = "unspecified"

// BedroomSuffix is appended to every bedroom count, singular included.
const BedroomSuffix = " bedrooms"

// BedroomLabel groups rooms by bedroom count. A missing count is 0.
func BedroomLabel(r models.Room) string {
	return strconv.Itoa(r.Bedrooms) + BedroomSuffix
}

// CheckOutMonth groups bookings by departure month ("MM/YYYY").
func CheckOutMonth(b models.Booking) string {
	return aggregate.MonthLabel(b.CheckOut)
}

// ProvinceLabel groups locations by province, compared exactly as the API
// sends it. Only an empty province falls back.
func ProvinceLabel(l models.Location) string {
	if l.Province != "" {
		return l.Province
	}
	return UnspecifiedProvince
}
