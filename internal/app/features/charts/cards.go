package charts

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Card is one summary tile above the charts.
type Card struct {
	Label  string
	Value  string
	Raw    int
	Failed bool
}

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Cards summarises r as the four dashboard tiles.
func Cards(r Result) []Card {
	return []Card{
		card("Users", r.Users, r.Failed(DimUsers)),
		card("Bookings", r.Bookings.Sum(), r.Failed(DimBookings)),
		card("Rooms", r.Rooms.Sum(), r.Failed(DimRooms)),
		card("Locations", r.Locations.Sum(), r.Failed(DimLocations)),
	}
}

func card(label string, n int, failed bool) Card {
	return Card{Label: label, Value: FormatCount(n), Raw: n, Failed: failed}
}
