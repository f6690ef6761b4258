package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"hotelstats/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleStats returns the daily statistics.
// GET /api/stats?day=YYYY-MM-DD
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.reports.DailyStats(r.Context(), r.URL.Query().Get("day"))
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReport returns the monthly calendar when month is present, otherwise
// the daily statistics.
// GET /api/report?day=YYYY-MM-DD&month=YYYY-MM
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.reports.Report(r.Context(), q.Get("day"), q.Get("month"), q.Has("month"))
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExport streams the report as an xlsx workbook, selected the same way
// as handleReport.
// GET /api/report/export?day=YYYY-MM-DD&month=YYYY-MM
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		buf  bytes.Buffer
		name string
	)
	if q.Has("month") {
		cal, err := s.reports.Calendar(r.Context(), q.Get("month"))
		if err != nil {
			s.writeFetchError(w, r, err)
			return
		}
		name = "calendar-" + cal.Summary.Month
		err = export.WriteCalendar(&buf, cal)
		if err != nil {
			s.writeExportError(w, r, err)
			return
		}
	} else {
		day, err := s.reports.DailyStats(r.Context(), q.Get("day"))
		if err != nil {
			s.writeFetchError(w, r, err)
			return
		}
		name = "stats-" + day.Day
		err = export.WriteDaily(&buf, day)
		if err != nil {
			s.writeExportError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.opts.Ready(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("not ready")
			http.Error(w, "cache not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *HTTPServer) writeExportError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("export failed")
	writeError(w, http.StatusInternalServerError, "failed to build workbook")
}
