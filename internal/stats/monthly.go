package stats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotelstats/internal/models"
)

const (
	unknownRoomCode = "unknown"
	unknownRoomName = "Unknown Room Type"
)

type roomAcc struct {
	code    string
	name    string
	booked  []bool
	rent    []decimal.Decimal
	nights  int
	revenue decimal.Decimal
}

// DaysInMonth parses month (YYYY-MM) and returns its length.
func DaysInMonth(month string) (int, bool) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, false
	}
	return t.AddDate(0, 1, -1).Day(), true
}

// Monthly builds the occupancy calendar for month (YYYY-MM).
//
// A malformed month gives an empty calendar with DaysInMonth == 0.
func Monthly(p *models.Payload, month string) models.MonthlyCalendar {
	n, ok := DaysInMonth(month)
	out := models.MonthlyCalendar{
		Rooms:       []models.RoomCalendar{},
		TotalsByDay: make([]models.DayTotals, n),
		Summary:     models.MonthSummary{Month: month, DaysInMonth: n},
	}
	if !ok || p == nil {
		return out
	}

	prefix := month + "-"
	rooms := make(map[string]*roomAcc)
	dayRevenue := make([]decimal.Decimal, n)
	dayNights := make([]int, n)

	for ri := range p.Reservations {
		res := &p.Reservations[ri]
		for ti := range res.Transactions {
			tr := &res.Transactions[ti]
			for _, row := range tr.RentalInfo {
				if !strings.HasPrefix(row.EffectiveDate, prefix) {
					continue
				}
				day := dayOfMonth(row.EffectiveDate)
				if day < 1 || day > n {
					continue
				}

				code, name := roomType(tr, &row)
				room, ok := rooms[code]
				if !ok {
					room = &roomAcc{
						code:   code,
						name:   name,
						booked: make([]bool, n),
						rent:   make([]decimal.Decimal, n),
					}
					rooms[code] = room
				}

				i := day - 1
				room.booked[i] = true
				room.rent[i] = room.rent[i].Add(row.Rent.Decimal)
				room.nights++
				room.revenue = room.revenue.Add(row.Rent.Decimal)
				dayRevenue[i] = dayRevenue[i].Add(row.Rent.Decimal)
				dayNights[i]++
			}
		}
	}

	codes := make([]string, 0, len(rooms))
	for code := range rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var totalRevenue decimal.Decimal
	for _, code := range codes {
		room := rooms[code]
		cal := models.RoomCalendar{
			Code: room.code,
			Name: room.name,
			Days: make([]models.DayCell, n),
			Totals: models.RoomTotals{
				Nights:  room.nights,
				Revenue: room.revenue.InexactFloat64(),
			},
		}
		for i := range cal.Days {
			cal.Days[i] = models.DayCell{Day: i + 1, Booked: room.booked[i], Rent: room.rent[i].InexactFloat64()}
		}
		out.Rooms = append(out.Rooms, cal)
		out.Summary.TotalNights += room.nights
		totalRevenue = totalRevenue.Add(room.revenue)
	}

	for i := range out.TotalsByDay {
		out.TotalsByDay[i] = models.DayTotals{Day: i + 1, Revenue: dayRevenue[i].InexactFloat64(), Nights: dayNights[i]}
	}
	out.Summary.TotalRooms = len(out.Rooms)
	out.Summary.TotalRevenue = totalRevenue.InexactFloat64()
	return out
}

// dayOfMonth reads characters 9-10 of a YYYY-MM-DD date; 0 when absent.
func dayOfMonth(date string) int {
	if len(date) < 10 {
		return 0
	}
	d, err := strconv.Atoi(date[8:10])
	if err != nil {
		return 0
	}
	return d
}

// roomType prefers the row's room type and falls back to the transaction's.
func roomType(tr *models.Transaction, row *models.RentalInfo) (code, name string) {
	switch {
	case !row.RoomTypeCode.Blank():
		code = strings.TrimSpace(string(row.RoomTypeCode))
	case !tr.RoomTypeCode.Blank():
		code = strings.TrimSpace(string(tr.RoomTypeCode))
	default:
		code = unknownRoomCode
	}
	switch {
	case !row.RoomTypeName.Blank():
		name = strings.TrimSpace(string(row.RoomTypeName))
	case !tr.RoomTypeName.Blank():
		name = strings.TrimSpace(string(tr.RoomTypeName))
	default:
		name = unknownRoomName
	}
	return code, name
}
