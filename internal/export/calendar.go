package export

import (
	"io"
	"sort"
	"strconv"

	"hotelstats/internal/models"
)

// WriteCalendar writes cal as a workbook with three sheets: the per-room
// calendar, the per-day totals and the month summary.
func WriteCalendar(out io.Writer, cal models.MonthlyCalendar) error {
	wb := newWorkbook()

	if err := wb.addSheet("Calendar " + cal.Summary.Month); err != nil {
		return err
	}
	cols := []string{"Code", "Room type"}
	for d := 1; d <= cal.Summary.DaysInMonth; d++ {
		cols = append(cols, strconv.Itoa(d))
	}
	cols = append(cols, "Nights", "Revenue")
	if err := wb.header(cols...); err != nil {
		return err
	}
	for _, room := range cal.Rooms {
		row := []interface{}{room.Code, room.Name}
		for _, cell := range room.Days {
			if cell.Booked {
				row = append(row, cell.Rent)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, room.Totals.Nights, room.Totals.Revenue)
		if err := wb.write(row); err != nil {
			return err
		}
	}

	if err := wb.addSheet("Totals by day"); err != nil {
		return err
	}
	if err := wb.header("Day", "Nights", "Revenue"); err != nil {
		return err
	}
	for _, t := range cal.TotalsByDay {
		if err := wb.write([]interface{}{t.Day, t.Nights, t.Revenue}); err != nil {
			return err
		}
	}

	if err := wb.addSheet("Summary"); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Month", cal.Summary.Month},
		{"Days in month", cal.Summary.DaysInMonth},
		{"Room types", cal.Summary.TotalRooms},
		{"Nights", cal.Summary.TotalNights},
		{"Revenue", cal.Summary.TotalRevenue},
	}
	for _, row := range summary {
		if err := wb.write(row); err != nil {
			return err
		}
	}

	return wb.save(out)
}

// WriteDaily writes one day's statistics with a sheet per grouping.
func WriteDaily(out io.Writer, s models.DailyStats) error {
	wb := newWorkbook()

	if err := wb.addSheet("Day " + s.Day); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Day", s.Day},
		{"Reservations", s.Reservations},
		{"Revenue", s.Revenue},
		{"Nights", s.Nights},
		{"ADR", s.ADR},
		{"Cancellations", s.Cancellations},
	}
	for _, row := range rows {
		if err := wb.write(row); err != nil {
			return err
		}
	}

	if err := writeBuckets(wb, "Sources", s.Sources); err != nil {
		return err
	}
	if err := writeBuckets(wb, "Nationalities", s.Nationalities); err != nil {
		return err
	}
	return wb.save(out)
}

func writeBuckets(wb *workbook, sheet string, buckets map[string]models.Bucket) error {
	if err := wb.addSheet(sheet); err != nil {
		return err
	}
	if err := wb.header("Key", "Reservations", "Nights", "Revenue", "ADR"); err != nil {
		return err
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b := buckets[k]
		if err := wb.write([]interface{}{k, b.ReservationCount, b.Nights, b.Revenue, b.ADR}); err != nil {
			return err
		}
	}
	return nil
}
