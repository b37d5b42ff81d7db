package economics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_estimator/internal/config"
	"pv_estimator/internal/model"
)

var unitTariffs = config.Tariffs{
	SelfConsumptionPrice: 1,
	FeedInTariff:         1,
	CostPerKWp:           0,
	EmissionFactor:       0,
}

func hourly(start time.Time, kw ...float64) model.Series {
	s := make(model.Series, 0, len(kw))
	for i, v := range kw {
		s = append(s, model.Point{Time: start.Add(time.Duration(i) * time.Hour), Value: v})
	}
	return s
}

func quarters(start time.Time, kwh ...float64) model.Series {
	s := make(model.Series, 0, len(kwh))
	for i, v := range kwh {
		s = append(s, model.Point{Time: start.Add(time.Duration(i) * 15 * time.Minute), Value: v})
	}
	return s
}

func TestBackfillHour(t *testing.T) {
	h := time.Date(2023, time.June, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, h, backfillHour(h))
	assert.Equal(t, h.Add(time.Hour), backfillHour(h.Add(15*time.Minute)))
	assert.Equal(t, h.Add(time.Hour), backfillHour(h.Add(30*time.Minute)))
	assert.Equal(t, h.Add(time.Hour), backfillHour(h.Add(45*time.Minute)))
}

// Hand-computed join: the hour mark keeps its own hourly value, the three
// quarter-hours after it inherit the next hour's value.
func TestCompute_BackfillJoin(t *testing.T) {
	start := time.Date(2023, time.June, 1, 10, 0, 0, 0, time.UTC)
	production := hourly(start, 2.0, 4.0) // kW at 10:00 and 11:00
	demand := quarters(start, 0.1, 0.1, 0.1, 0.1)

	result := Compute(production, demand, model.SystemSpec{}, unitTariffs)

	// 10:00 -> 2.0 kW * 0.25 = 0.5 kWh; 10:15..10:45 -> 4.0 * 0.25 = 1.0 kWh
	// self-consumed: 0.1 each interval; surplus: 0.4 + 3*0.9
	assert.Equal(t, 0.4, result.CostSavings)
	assert.Equal(t, 3.1, result.GridFeedInProfit)
}

// self + surplus equals production energy in every interval, so with unit
// tariffs savings + profit must equal the back-filled production energy.
func TestCompute_EnergyConservation(t *testing.T) {
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	production := hourly(start, 0, 1.2, 3.4, 2.0, 0.8, 0)
	demand := quarters(start,
		0.3, 0.3, 0.3, 0.3,
		0.1, 0.1, 0.1, 0.1,
		0.9, 0.9, 0.9, 0.9,
		0.2, 0.2, 0.2, 0.2,
		0.0, 0.0, 0.0, 0.0,
	)

	result := Compute(production, demand, model.SystemSpec{}, unitTariffs)

	// Back-filled production energy over the demand window: hour h is used
	// by its own hour mark plus the three quarters before it.
	var joined float64
	for _, d := range demand {
		for _, p := range production {
			if p.Time.Equal(backfillHour(d.Time)) {
				joined += p.Value * 0.25
			}
		}
	}
	assert.InDelta(t, joined, result.CostSavings+result.GridFeedInProfit, 0.011)
}

// Surplus stays zero whenever demand covers production.
func TestCompute_NoSurplusWhenDemandCovers(t *testing.T) {
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	production := hourly(start, 1.0, 1.0)
	demand := quarters(start, 5, 5, 5, 5, 5, 5, 5, 5)

	result := Compute(production, demand, model.SystemSpec{}, unitTariffs)

	assert.Zero(t, result.GridFeedInProfit)
	// all production self-consumed: 1 kW over 2 h, minus the three trailing
	// quarters that have no following production hour to inherit
	assert.InDelta(t, 1.25, result.CostSavings, 1e-9)
}

// Increasing demand with fixed production never decreases savings and never
// increases feed-in profit.
func TestCompute_MonotonicInDemand(t *testing.T) {
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	production := hourly(start, 0.5, 2.0, 1.0)
	shape := []float64{0.1, 0.4, 0.2, 0.3, 0.5, 0.1, 0.2, 0.2, 0.6, 0.1, 0.1, 0.3}

	var prevSavings, prevProfit float64
	first := true
	for _, scale := range []float64{0, 0.5, 1, 2, 10} {
		scaled := make([]float64, len(shape))
		for i, v := range shape {
			scaled[i] = v * scale
		}
		result := Compute(production, quarters(start, scaled...), model.SystemSpec{}, unitTariffs)

		if !first {
			assert.GreaterOrEqual(t, result.CostSavings, prevSavings, "scale %v", scale)
			assert.LessOrEqual(t, result.GridFeedInProfit, prevProfit, "scale %v", scale)
		}
		prevSavings, prevProfit = result.CostSavings, result.GridFeedInProfit
		first = false
	}
}

// Zero demand: no savings, and the whole production is exported at exactly
// the feed-in tariff.
func TestCompute_ZeroDemand(t *testing.T) {
	start := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	// first hour zero so the missing lead-in quarters cost nothing
	production := hourly(start, 0, 1.5, 3.0, 2.5, 0.5)
	demand := quarters(start, make([]float64, 5*4)...)

	tariffs := unitTariffs
	tariffs.FeedInTariff = 0.0803

	result := Compute(production, demand, model.SystemSpec{}, tariffs)

	assert.Zero(t, result.CostSavings)
	assert.InDelta(t, result.AnnualProductionKWh*tariffs.FeedInTariff, result.GridFeedInProfit, 0.011)
}

func TestCompute_AnnualAndMonthlyProduction(t *testing.T) {
	jan := time.Date(2023, time.January, 31, 23, 0, 0, 0, time.UTC)
	production := hourly(jan, 1.111, 2.222, 3.333) // last two hours land in February

	result := Compute(production, nil, model.SystemSpec{}, unitTariffs)

	assert.Equal(t, 6.67, result.AnnualProductionKWh)
	assert.Equal(t, 1.11, result.MonthlyProductionKWh[0])
	assert.Equal(t, 5.56, result.MonthlyProductionKWh[1])
}

func TestCompute_Payback(t *testing.T) {
	start := time.Date(2023, time.June, 1, 10, 0, 0, 0, time.UTC)
	production := hourly(start, 2.0, 4.0)
	demand := quarters(start, 0.1, 0.1, 0.1, 0.1)

	tariffs := unitTariffs
	tariffs.CostPerKWp = 1500
	spec := model.SystemSpec{CapacityKWp: 5}

	result := Compute(production, demand, spec, tariffs)

	require.True(t, result.PaybackDefined)
	// 7500 / (0.4 + 3.1)
	assert.Equal(t, 2142.86, result.PaybackYears)
}

func TestCompute_PaybackUndefined(t *testing.T) {
	result := Compute(nil, nil, model.SystemSpec{CapacityKWp: 5}, unitTariffs)

	assert.False(t, result.PaybackDefined)
	assert.Zero(t, result.PaybackYears)
}

func TestCompute_CO2Reduction(t *testing.T) {
	jan := time.Date(2023, time.January, 1, 10, 0, 0, 0, time.UTC)
	jul := time.Date(2023, time.July, 1, 10, 0, 0, 0, time.UTC)
	production := model.Series{
		{Time: jan, Value: 100},
		{Time: jul, Value: 200},
	}

	tariffs := unitTariffs
	tariffs.EmissionFactor = 0.380

	result := Compute(production, nil, model.SystemSpec{}, tariffs)

	assert.Equal(t, 38.0, result.MonthlyCO2ReductionKg[0])
	assert.Equal(t, 76.0, result.MonthlyCO2ReductionKg[6])
	assert.Equal(t, 114.0, result.AnnualCO2ReductionKg)
}
