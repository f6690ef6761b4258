package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotelstats/internal/models"
)

func sampleCalendar() models.MonthlyCalendar {
	days := make([]models.DayCell, 28)
	totals := make([]models.DayTotals, 28)
	for i := range days {
		days[i] = models.DayCell{Day: i + 1}
		totals[i] = models.DayTotals{Day: i + 1}
	}
	days[1] = models.DayCell{Day: 2, Booked: true, Rent: 120}
	totals[1] = models.DayTotals{Day: 2, Revenue: 120, Nights: 1}

	return models.MonthlyCalendar{
		Rooms: []models.RoomCalendar{{
			Code:   "DBL",
			Name:   "Double",
			Days:   days,
			Totals: models.RoomTotals{Nights: 1, Revenue: 120},
		}},
		TotalsByDay: totals,
		Summary: models.MonthSummary{
			Month: "2025-02", DaysInMonth: 28, TotalRooms: 1, TotalNights: 1, TotalRevenue: 120,
		},
	}
}

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteCalendar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, sampleCalendar()))

	f := open(t, &buf)
	assert.Equal(t, []string{"Calendar 2025-02", "Totals by day", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Calendar 2025-02")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "28", rows[0][29])
	assert.Equal(t, "Revenue", rows[0][31])
	assert.Equal(t, "DBL", rows[1][0])
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "120", rows[1][3])

	rows, err = f.GetRows("Totals by day")
	require.NoError(t, err)
	assert.Len(t, rows, 29)

	v, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "28", v)
}

func TestWriteCalendar_Empty(t *testing.T) {
	var buf bytes.Buffer
	cal := models.MonthlyCalendar{Summary: models.MonthSummary{Month: "bogus"}}
	require.NoError(t, WriteCalendar(&buf, cal))

	f := open(t, &buf)
	rows, err := f.GetRows("Calendar bogus")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteDaily(t *testing.T) {
	var buf bytes.Buffer
	s := models.DailyStats{
		Day: "2025-08-10", Reservations: 2, Revenue: 300, Nights: 2, ADR: 150,
		Sources: map[string]models.Bucket{
			"direct":      {ReservationCount: 1, Revenue: 100, Nights: 1, ADR: 100},
			"booking.com": {ReservationCount: 1, Revenue: 200, Nights: 1, ADR: 200},
		},
		Nationalities: map[string]models.Bucket{
			"unknown": {ReservationCount: 2, Revenue: 300, Nights: 2, ADR: 150},
		},
	}
	require.NoError(t, WriteDaily(&buf, s))

	f := open(t, &buf)
	assert.Equal(t, []string{"Day 2025-08-10", "Sources", "Nationalities"}, f.GetSheetList())

	rows, err := f.GetRows("Sources")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "booking.com", rows[1][0])
	assert.Equal(t, "direct", rows[2][0])
}

func TestWorkbookHeader(t *testing.T) {
	w := newWorkbook()
	assert.Error(t, w.header("Day"), "no active sheet")

	require.NoError(t, w.addSheet("Summary"))
	require.NoError(t, w.header("Day", "Revenue"))
	require.NoError(t, w.header("Room"))

	first, err := w.file.GetCellStyle("Summary", "B1")
	require.NoError(t, err)
	second, err := w.file.GetCellStyle("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, first, second, "one shared header style")

	style, err := w.file.GetStyle(first)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	plain, err := w.file.GetCellStyle("Summary", "B2")
	require.NoError(t, err)
	assert.Zero(t, plain)
}
