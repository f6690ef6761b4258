// Package stats reduces vendor reservation data into daily and monthly
// occupancy reports. Every function here is pure: same payload and date in,
// same report out.
package stats

import (
	"github.com/shopspring/decimal"

	"hotelstats/internal/models"
)

type accumulator struct {
	reservations int
	nights       int
	revenue      decimal.Decimal
}

func (a *accumulator) bucket() models.Bucket {
	return models.Bucket{
		ReservationCount: a.reservations,
		Revenue:          a.revenue.InexactFloat64(),
		Nights:           a.nights,
		ADR:              adr(a.revenue, a.nights),
	}
}

// adr is revenue per room-night, zero when nothing was sold.
func adr(revenue decimal.Decimal, nights int) float64 {
	if nights <= 0 {
		return 0
	}
	return revenue.Div(decimal.NewFromInt(int64(nights))).InexactFloat64()
}

// Daily computes the statistics for day (YYYY-MM-DD).
//
// Each rental-info row dated day adds its rent and one night to the total and
// to the transaction's source and nationality groups. A transaction is counted
// once as a reservation if at least one of its rows matched.
func Daily(p *models.Payload, day string) models.DailyStats {
	var all accumulator
	sources := make(map[string]*accumulator)
	nationalities := make(map[string]*accumulator)

	group := func(m map[string]*accumulator, key string) *accumulator {
		acc, ok := m[key]
		if !ok {
			acc = &accumulator{revenue: decimal.Zero}
			m[key] = acc
		}
		return acc
	}

	if p != nil {
		for ri := range p.Reservations {
			res := &p.Reservations[ri]
			for ti := range res.Transactions {
				tr := &res.Transactions[ti]

				var matched int
				var revenue decimal.Decimal
				for _, row := range tr.RentalInfo {
					if row.EffectiveDate != day {
						continue
					}
					matched++
					revenue = revenue.Add(row.Rent.Decimal)
				}
				if matched == 0 {
					continue
				}

				src := group(sources, tr.SourceKey(res).Key())
				nat := group(nationalities, tr.NationalityKey(res).Key())
				for _, acc := range []*accumulator{&all, src, nat} {
					acc.reservations++
					acc.nights += matched
					acc.revenue = acc.revenue.Add(revenue)
				}
			}
		}
	}

	out := models.DailyStats{
		Day:           day,
		Reservations:  all.reservations,
		Revenue:       all.revenue.InexactFloat64(),
		Nights:        all.nights,
		ADR:           adr(all.revenue, all.nights),
		Cancellations: countCancellations(p, day),
		Sources:       make(map[string]models.Bucket, len(sources)),
		Nationalities: make(map[string]models.Bucket, len(nationalities)),
	}
	for k, acc := range sources {
		out.Sources[k] = acc.bucket()
	}
	for k, acc := range nationalities {
		out.Nationalities[k] = acc.bucket()
	}
	return out
}

// countCancellations counts cancellation records dated day. It is
// independent of the reservation loop.
func countCancellations(p *models.Payload, day string) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, c := range p.Cancellations {
		if models.DatePart(c.CancelDate) == day {
			n++
		}
	}
	return n
}
