// Package reconcile corrects the structural double-count that appears when a
// premium seating format is reported as its own line item while its seats are
// physically part of the standard auditorium of the same show.
package reconcile

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// overlapPairs maps a premium format to the base format whose reported capacity
// already contains the premium seats. Only d-box has been observed to overlap;
// extending the correction to another pair is a table change.
var overlapPairs = map[string]string{
	"d-box": "standard",
}

// Result is the output of one reconciliation pass: the corrected groups in a
// deterministic order, plus the before/after figures of every group the
// correction actually touched.
type Result struct {
	Shows   []domain.ReconciledShow
	Matched []domain.MatchedGroup
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Reconcile groups the successful records by (theater, date, language), folds
// them into per-format buckets, removes the premium/base double-count, and
// recomputes the derived metrics. Records are never mutated; error records are
// ignored. Output groups are sorted by key and buckets by format name, so equal
// inputs always serialize identically.
func (e *Engine) Reconcile(records []domain.ShowRecord) Result {
	type group struct {
		show    domain.ReconciledShow
		buckets map[string]*domain.FormatBucket
	}

	groups := make(map[domain.GroupKey]*group)

	for _, rec := range records {
		if !rec.Successful() || rec.Date == "" {
			continue
		}

		key := domain.GroupKey{TheaterName: rec.TheaterName, Date: rec.Date, Language: rec.Language}

		g, ok := groups[key]
		if !ok {
			g = &group{
				show: domain.ReconciledShow{
					State:       rec.State,
					City:        rec.City,
					Zip:         rec.Zip,
					TheaterName: rec.TheaterName,
					ChainName:   rec.ChainName,
					ChainCode:   rec.ChainCode,
					Date:        rec.Date,
					Language:    rec.Language,
				},
				buckets: make(map[string]*domain.FormatBucket),
			}
			groups[key] = g
		}

		format := strings.ToLower(rec.Format)
		if format == "" {
			format = "standard"
		}

		bucket, ok := g.buckets[format]
		if !ok {
			bucket = &domain.FormatBucket{
				Format:      format,
				TicketPrice: rec.TicketPrice,
				Fee:         rec.Fee,
			}
			g.buckets[format] = bucket
		}

		bucket.SeatsSold += rec.SeatsSold
		bucket.SeatsTotal += rec.SeatsTotal
		bucket.GrossRevenue = bucket.GrossRevenue.Add(rec.GrossRevenue)
		bucket.GrossWithFee = bucket.GrossWithFee.Add(rec.GrossWithFee)
	}

	keys := make([]domain.GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.TheaterName != b.TheaterName {
			return a.TheaterName < b.TheaterName
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Language < b.Language
	})

	var result Result

	for _, key := range keys {
		g := groups[key]

		for _, matched := range e.correct(g.buckets) {
			matched.Key = key
			result.Matched = append(result.Matched, matched)
		}

		finalizeGroup(&g.show, g.buckets)
		result.Shows = append(result.Shows, g.show)
	}

	return result
}

// correct removes the premium-format double-count from the base bucket in
// place. The premium bucket is authoritative for its physical seats and is left
// untouched. Returns the before/after figures of each correction applied.
func (e *Engine) correct(buckets map[string]*domain.FormatBucket) []domain.MatchedGroup {
	var matched []domain.MatchedGroup

	for premiumName, baseName := range overlapPairs {
		premium, hasPremium := buckets[premiumName]
		base, hasBase := buckets[baseName]
		if !hasPremium || !hasBase {
			continue
		}

		grossBefore := base.GrossRevenue

		base.SeatsTotal = max(0, base.SeatsTotal-premium.SeatsTotal)

		removed := min(base.SeatsSold, premium.SeatsSold)
		base.SeatsSold = max(0, base.SeatsSold-removed)

		removedDec := decimal.NewFromInt(int64(removed))
		duplicateGross := base.TicketPrice.Mul(removedDec)
		duplicateGrossWithFee := base.TicketPrice.Add(base.Fee).Mul(removedDec)

		base.GrossRevenue = clampZero(base.GrossRevenue.Sub(duplicateGross)).Round(2)
		base.GrossWithFee = clampZero(base.GrossWithFee.Sub(duplicateGrossWithFee)).Round(2)

		matched = append(matched, domain.MatchedGroup{
			StandardGrossBefore: grossBefore.Round(2),
			StandardGrossAfter:  base.GrossRevenue,
			PremiumGross:        premium.GrossRevenue.Round(2),
		})
	}

	return matched
}

// finalizeGroup recomputes occupancy per bucket, rounds the money figures, and
// sums the corrected buckets into the group totals.
func finalizeGroup(show *domain.ReconciledShow, buckets map[string]*domain.FormatBucket) {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	finalGross := decimal.Zero
	finalGrossWithFee := decimal.Zero

	for _, name := range names {
		bucket := buckets[name]

		bucket.Occupancy = domain.OccupancyPct(bucket.SeatsSold, bucket.SeatsTotal)
		bucket.GrossRevenue = bucket.GrossRevenue.Round(2)
		bucket.GrossWithFee = bucket.GrossWithFee.Round(2)

		finalGross = finalGross.Add(bucket.GrossRevenue)
		finalGrossWithFee = finalGrossWithFee.Add(bucket.GrossWithFee)
		show.FinalSold += bucket.SeatsSold
		show.FinalCapacity += bucket.SeatsTotal

		show.Formats = append(show.Formats, *bucket)
	}

	show.FinalGross = finalGross.Round(2)
	show.FinalGrossWithFee = finalGrossWithFee.Round(2)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
