// Package economics aligns the production and demand series and derives the
// monetary and CO2 results.
//
// Alignment policy: the hourly production series is joined onto the
// 15-minute demand series by back-fill. The quarter-hour at an hour mark
// uses that hour's value; the three quarter-hours after it inherit the next
// hour's value. Demand intervals past the final production hour contribute
// nothing. The policy is pinned by tests; switching to forward-fill would
// shift totals at day and month boundaries.
package economics

import (
	"math"
	"time"

	"pv_estimator/internal/config"
	"pv_estimator/internal/model"
)

// quarterHourKWh converts average power (kW) over a 15-minute interval to
// energy (kWh).
const quarterHourKWh = 0.25

// Compute derives the economic result from the hourly production series
// (kW), the 15-minute demand series (kWh per interval) and the sized system.
// When combined savings and profit are zero the payback period is reported
// as undefined, never as a division by zero.
func Compute(production, demand model.Series, spec model.SystemSpec, tariffs config.Tariffs) model.EconomicResult {
	var result model.EconomicResult

	// Hourly kW at 1 h steps sum directly to kWh.
	result.AnnualProductionKWh = round2(production.Sum())
	monthly := production.MonthlySums()
	for i := range monthly {
		result.MonthlyProductionKWh[i] = round2(monthly[i])
	}

	prodByTime := make(map[time.Time]float64, len(production))
	for _, p := range production {
		prodByTime[p.Time] = p.Value
	}

	var savings, profit float64
	for _, d := range demand {
		powerKW, ok := prodByTime[backfillHour(d.Time)]
		if !ok {
			continue
		}
		prodKWh := powerKW * quarterHourKWh

		selfConsumed := math.Min(prodKWh, d.Value)
		savings += selfConsumed * tariffs.SelfConsumptionPrice

		surplus := prodKWh - d.Value
		if surplus > 0 {
			profit += surplus * tariffs.FeedInTariff
		}
	}
	result.CostSavings = round2(savings)
	result.GridFeedInProfit = round2(profit)

	if denominator := result.CostSavings + result.GridFeedInProfit; denominator > 0 {
		result.PaybackYears = round2(spec.CapacityKWp * tariffs.CostPerKWp / denominator)
		result.PaybackDefined = true
	}

	var annualCO2 float64
	for i, prod := range result.MonthlyProductionKWh {
		result.MonthlyCO2ReductionKg[i] = round2(prod * tariffs.EmissionFactor)
		annualCO2 += result.MonthlyCO2ReductionKg[i]
	}
	result.AnnualCO2ReductionKg = round2(annualCO2)

	return result
}

// backfillHour maps a quarter-hour timestamp to the production hour it
// inherits: the hour mark itself, otherwise the next hour boundary.
func backfillHour(t time.Time) time.Time {
	onHour := t.Truncate(time.Hour)
	if onHour.Equal(t) {
		return t
	}
	return onHour.Add(time.Hour)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
