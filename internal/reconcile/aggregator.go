package reconcile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// Aggregator produces the run-level reporting views. It reads reconciled and
// merged data and computes sums; it never writes back into either.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Summarize folds the successful records of the merged dataset into one run-log
// row. Error records contribute nothing, not even to the venue count.
func (a *Aggregator) Summarize(records []domain.ShowRecord, now time.Time) domain.RunSummary {
	totalGross := decimal.Zero
	totalGrossWithFee := decimal.Zero
	totalShows := 0
	ticketsSold := 0
	totalCapacity := 0
	venues := make(map[string]bool)

	for _, rec := range records {
		if !rec.Successful() {
			continue
		}

		totalGross = totalGross.Add(rec.GrossRevenue)
		totalGrossWithFee = totalGrossWithFee.Add(rec.GrossWithFee)
		totalShows++
		ticketsSold += rec.SeatsSold
		totalCapacity += rec.SeatsTotal
		venues[rec.TheaterName] = true
	}

	return domain.RunSummary{
		RunID:             uuid.New().String(),
		Time:              now.Format("2006-01-02 03:04:05 PM"),
		TotalGross:        totalGross.Round(2),
		TotalGrossWithFee: totalGrossWithFee.Round(2),
		TotalShows:        totalShows,
		AvgOccupancy:      domain.OccupancyPct(ticketsSold, totalCapacity),
		TicketsSold:       ticketsSold,
		UniqueVenues:      len(venues),
	}
}

// GrandTotals sums the corrected group totals across all reconciled shows.
func (a *Aggregator) GrandTotals(shows []domain.ReconciledShow) (gross, grossWithFee decimal.Decimal) {
	gross = decimal.Zero
	grossWithFee = decimal.Zero

	for _, show := range shows {
		gross = gross.Add(show.FinalGross)
		grossWithFee = grossWithFee.Add(show.FinalGrossWithFee)
	}

	return gross.Round(2), grossWithFee.Round(2)
}

// Impact quantifies what the double-count correction changed, restricted to the
// groups where both overlapping formats existed before correction.
type Impact struct {
	MatchedGroups       int
	StandardGrossBefore decimal.Decimal
	StandardGrossAfter  decimal.Decimal
	PremiumGross        decimal.Decimal
	CombinedBefore      decimal.Decimal
	CombinedAfter       decimal.Decimal
	Difference          decimal.Decimal
}

// ImpactReport sums the per-group correction figures into a run-level view of
// the correction's financial effect.
func (a *Aggregator) ImpactReport(matched []domain.MatchedGroup) Impact {
	impact := Impact{
		StandardGrossBefore: decimal.Zero,
		StandardGrossAfter:  decimal.Zero,
		PremiumGross:        decimal.Zero,
	}

	for _, m := range matched {
		impact.MatchedGroups++
		impact.StandardGrossBefore = impact.StandardGrossBefore.Add(m.StandardGrossBefore)
		impact.StandardGrossAfter = impact.StandardGrossAfter.Add(m.StandardGrossAfter)
		impact.PremiumGross = impact.PremiumGross.Add(m.PremiumGross)
	}

	impact.CombinedBefore = impact.StandardGrossBefore.Add(impact.PremiumGross).Round(2)
	impact.CombinedAfter = impact.StandardGrossAfter.Add(impact.PremiumGross).Round(2)
	impact.Difference = impact.CombinedAfter.Sub(impact.CombinedBefore).Round(2)
	impact.StandardGrossBefore = impact.StandardGrossBefore.Round(2)
	impact.StandardGrossAfter = impact.StandardGrossAfter.Round(2)
	impact.PremiumGross = impact.PremiumGross.Round(2)

	return impact
}
