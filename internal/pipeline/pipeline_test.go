package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv_estimator/internal/config"
	"pv_estimator/internal/model"
	"pv_estimator/internal/profile"
	"pv_estimator/internal/weather"
)

// fakeProvider returns canned records; they deliberately start mid-year and
// carry TMY-style mixed source years to exercise re-stamping and sorting.
type fakeProvider struct {
	records []weather.Record
	err     error
}

func (f *fakeProvider) TMY(ctx context.Context, loc model.Location) ([]weather.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeEngine echoes one point per record with a fixed power value.
type fakeEngine struct {
	powerKW float64
}

func (f *fakeEngine) Simulate(records []weather.Record, loc model.Location, roof model.Rooftop, spec model.SystemSpec) model.Series {
	s := make(model.Series, 0, len(records))
	for _, r := range records {
		s = append(s, model.Point{Time: r.Time, Value: f.powerKW})
	}
	return s
}

func tmyRecords() []weather.Record {
	// July from source year 2009, January from 2012: out of order once the
	// year is substituted.
	return []weather.Record{
		{Time: time.Date(2009, time.July, 1, 11, 0, 0, 0, time.UTC), GHI: 600},
		{Time: time.Date(2009, time.July, 1, 12, 0, 0, 0, time.UTC), GHI: 650},
		{Time: time.Date(2012, time.January, 1, 11, 0, 0, 0, time.UTC), GHI: 100},
		{Time: time.Date(2012, time.January, 1, 12, 0, 0, 0, time.UTC), GHI: 120},
	}
}

func testProfile(t *testing.T) *profile.Profile {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "Zeile %d\r\n", i)
	}
	b.WriteString("Messwert-Nr.;Zeitstempel von;Zeitstempel bis;H00 [kW];H00 [kWh]\r\n")
	for i := 0; i < 8; i++ {
		ts := time.Date(2021, time.January, 1, 11, 0, 0, 0, time.UTC).Add(time.Duration(i) * 15 * time.Minute)
		fmt.Fprintf(&b, "%d;%s;%s;0,1;0,025\r\n", i+1, ts.Format("02.01.2006 15:04"), ts.Format("02.01.2006 15:04"))
	}
	p, err := profile.Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	return p
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func munichHouse() model.House {
	return model.House{
		Location:        model.Location{Latitude: 48.1374, Longitude: 11.5755},
		Rooftop:         model.Rooftop{TiltAngle: 70, AzimuthAngle: 135},
		AnnualDemandKWh: 5000,
	}
}

func TestSizeSystem(t *testing.T) {
	assert.Equal(t, 5.0, SizeSystem(5000).CapacityKWp)
	assert.Equal(t, 0.0, SizeSystem(0).CapacityKWp)
}

func TestRun_Scenario(t *testing.T) {
	pipe := New(&fakeProvider{records: tmyRecords()}, &fakeEngine{powerKW: 1.5}, testProfile(t), config.Default(), quietLogger())

	result, err := pipe.Run(context.Background(), munichHouse())
	require.NoError(t, err)

	assert.Greater(t, result.AnnualProductionKWh, 0.0)

	var monthlySum float64
	for _, m := range result.MonthlyProductionKWh {
		monthlySum += m
	}
	assert.InDelta(t, result.AnnualProductionKWh, monthlySum, 0.05)

	assert.GreaterOrEqual(t, result.CostSavings, 0.0)
	assert.GreaterOrEqual(t, result.GridFeedInProfit, 0.0)
	assert.Greater(t, result.AnnualCO2ReductionKg, 0.0)
}

func TestRun_RejectsInvalidInput(t *testing.T) {
	pipe := New(&fakeProvider{records: tmyRecords()}, &fakeEngine{powerKW: 1}, testProfile(t), config.Default(), quietLogger())

	house := munichHouse()
	house.Location.Latitude = 123

	_, err := pipe.Run(context.Background(), house)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRun_PropagatesDataUnavailable(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: no data", weather.ErrNoData)}
	pipe := New(provider, &fakeEngine{powerKW: 1}, testProfile(t), config.Default(), quietLogger())

	_, err := pipe.Run(context.Background(), munichHouse())
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrNoData)
}

func TestEstimateProduction_CanonicalYearAndOrder(t *testing.T) {
	pipe := New(&fakeProvider{records: tmyRecords()}, &fakeEngine{powerKW: 1}, testProfile(t), config.Default(), quietLogger())

	production, err := pipe.estimateProduction(context.Background(), munichHouse(), model.SystemSpec{CapacityKWp: 5})
	require.NoError(t, err)
	require.Len(t, production, 4)

	for i, p := range production {
		assert.Equal(t, 2023, p.Time.Year(), "point %d", i)
		if i > 0 {
			assert.True(t, production[i-1].Time.Before(p.Time), "series must be sorted after year substitution")
		}
	}
	// January hours now precede the July ones
	assert.Equal(t, time.January, production[0].Time.Month())
	assert.Equal(t, time.July, production[3].Time.Month())
}

func TestRun_NoPartialResultOnProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	pipe := New(provider, &fakeEngine{powerKW: 1}, testProfile(t), config.Default(), quietLogger())

	result, err := pipe.Run(context.Background(), munichHouse())
	require.Error(t, err)
	assert.Zero(t, result)
}
