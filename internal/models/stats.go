package models

// DailyStats is the occupancy and revenue summary for one calendar day.
type DailyStats struct {
	Day           string            `json:"day"`
	Reservations  int               `json:"reservations"`
	Revenue       float64           `json:"revenue"`
	Nights        int               `json:"nights"`
	ADR           float64           `json:"ADR"`
	Cancellations int               `json:"cancellations"`
	Sources       map[string]Bucket `json:"sources"`
	Nationalities map[string]Bucket `json:"nationalities"`
}

// Bucket is one group of DailyStats (a source or a nationality).
type Bucket struct {
	ReservationCount int     `json:"reservationCount"`
	Revenue          float64 `json:"revenue"`
	Nights           int     `json:"nights"`
	ADR              float64 `json:"ADR"`
}

// MonthlyCalendar is the per room type occupancy calendar of one month.
type MonthlyCalendar struct {
	Rooms       []RoomCalendar `json:"rooms"`
	TotalsByDay []DayTotals    `json:"totalsByDay"`
	Summary     MonthSummary   `json:"summary"`
}

// RoomCalendar holds one cell per day of the month for a room type.
type RoomCalendar struct {
	Code   string     `json:"code"`
	Name   string     `json:"name"`
	Days   []DayCell  `json:"days"`
	Totals RoomTotals `json:"totals"`
}

// DayCell is a room type's state on one day.
type DayCell struct {
	Day    int     `json:"day"`
	Booked bool    `json:"booked"`
	Rent   float64 `json:"rent"`
}

// RoomTotals sums a room type over the month.
type RoomTotals struct {
	Nights  int     `json:"nights"`
	Revenue float64 `json:"revenue"`
}

// DayTotals sums all room types on one day.
type DayTotals struct {
	Day     int     `json:"day"`
	Revenue float64 `json:"revenue"`
	Nights  int     `json:"nights"`
}

// MonthSummary aggregates the whole calendar.
type MonthSummary struct {
	Month        string  `json:"month"`
	DaysInMonth  int     `json:"daysInMonth"`
	TotalRooms   int     `json:"totalRooms"`
	TotalNights  int     `json:"totalNights"`
	TotalRevenue float64 `json:"totalRevenue"`
}
