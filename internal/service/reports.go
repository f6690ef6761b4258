// Package service turns request parameters into cache keys and vendor windows,
// fetches through the orchestrator and runs the aggregators.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hotelstats/internal/cache"
	"hotelstats/internal/fetch"
	"hotelstats/internal/models"
	"hotelstats/internal/stats"
	"hotelstats/internal/vendor"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"

	// singleKey is the only key used by the single-record layout.
	singleKey = "latest"
)

// Fetcher is the part of fetch.Orchestrator the service uses.
type Fetcher interface {
	FetchData(ctx context.Context, key string, p vendor.Params) (*fetch.Result, error)
}

// Decoder maps a raw vendor body onto the payload model.
type Decoder interface {
	Decode(raw json.RawMessage) (*models.Payload, error)
}

// Options controls key derivation and the vendor arrival window.
type Options struct {
	Layout        cache.Layout
	Location      *time.Location
	LookbackDays  int
	LookaheadDays int
}

// Reports answers the daily and monthly report calls.
type Reports struct {
	fetcher Fetcher
	decoder Decoder
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates the report service.
func New(fetcher Fetcher, decoder Decoder, opts Options, logger zerolog.Logger) *Reports {
	if opts.Location == nil {
		opts.Location = LoadLocation("")
	}
	if opts.Layout == "" {
		opts.Layout = cache.LayoutSingle
	}
	return &Reports{
		fetcher: fetcher,
		decoder: decoder,
		opts:    opts,
		logger:  logger.With().Str("component", "reports").Logger(),
		now:     time.Now,
	}
}

// ResolveDay returns param when it is a real YYYY-MM-DD date, otherwise today
// in the configured zone.
func (r *Reports) ResolveDay(param string) string {
	if t, err := time.ParseInLocation(dayLayout, param, r.opts.Location); err == nil && t.Format(dayLayout) == param {
		return param
	}
	if param != "" {
		r.logger.Debug().Str("day", param).Msg("invalid day, using today")
	}
	return r.now().In(r.opts.Location).Format(dayLayout)
}

// ResolveMonth returns param when it is a valid YYYY-MM month, otherwise the
// current month in the configured zone.
func (r *Reports) ResolveMonth(param string) string {
	if t, err := time.ParseInLocation(monthLayout, param, r.opts.Location); err == nil && t.Format(monthLayout) == param {
		return param
	}
	if param != "" {
		r.logger.Debug().Str("month", param).Msg("invalid month, using current month")
	}
	return r.now().In(r.opts.Location).Format(monthLayout)
}

// DailyStats returns the statistics for dayParam.
func (r *Reports) DailyStats(ctx context.Context, dayParam string) (models.DailyStats, error) {
	day := r.ResolveDay(dayParam)
	key, params := r.dayRequest(day)

	p, err := r.payload(ctx, key, params)
	if err != nil {
		return models.DailyStats{}, err
	}
	return stats.Daily(p, day), nil
}

// Calendar returns the occupancy calendar for monthParam.
func (r *Reports) Calendar(ctx context.Context, monthParam string) (models.MonthlyCalendar, error) {
	month := r.ResolveMonth(monthParam)
	key, params := r.monthRequest(month)

	p, err := r.payload(ctx, key, params)
	if err != nil {
		return models.MonthlyCalendar{}, err
	}
	return stats.Monthly(p, month), nil
}

// Report returns the monthly calendar when a month parameter was supplied,
// valid or not, and the daily statistics otherwise.
func (r *Reports) Report(ctx context.Context, dayParam, monthParam string, monthGiven bool) (any, error) {
	if monthGiven {
		return r.Calendar(ctx, monthParam)
	}
	return r.DailyStats(ctx, dayParam)
}

func (r *Reports) payload(ctx context.Context, key string, params vendor.Params) (*models.Payload, error) {
	res, err := r.fetcher.FetchData(ctx, key, params)
	if err != nil {
		return nil, err
	}
	p, err := r.decoder.Decode(res.Data)
	if err != nil {
		return nil, fmt.Errorf("decode payload for %s: %w", key, err)
	}
	return p, nil
}

func (r *Reports) dayRequest(day string) (string, vendor.Params) {
	if r.opts.Layout == cache.LayoutByDay {
		d, _ := time.ParseInLocation(dayLayout, day, r.opts.Location)
		return day, r.window(d.AddDate(0, 0, -r.opts.LookbackDays), d)
	}
	return r.singleRequest()
}

func (r *Reports) monthRequest(month string) (string, vendor.Params) {
	if r.opts.Layout == cache.LayoutByDay {
		first, _ := time.ParseInLocation(monthLayout, month, r.opts.Location)
		last := first.AddDate(0, 1, -1)
		// Month keys stay distinct from day keys; the windows differ.
		return month, r.window(first.AddDate(0, 0, -r.opts.LookbackDays), last)
	}
	return r.singleRequest()
}

func (r *Reports) singleRequest() (string, vendor.Params) {
	today := r.now().In(r.opts.Location)
	y, m, d := today.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, r.opts.Location)
	return singleKey, r.window(today.AddDate(0, 0, -r.opts.LookbackDays), today.AddDate(0, 0, r.opts.LookaheadDays))
}

func (r *Reports) window(from, to time.Time) vendor.Params {
	return vendor.Params{ArrivalFrom: from.Format(dayLayout), ArrivalTo: to.Format(dayLayout)}
}
