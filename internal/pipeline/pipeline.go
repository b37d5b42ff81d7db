// Package pipeline runs the four-stage estimation pass: size the system,
// estimate production from weather, estimate consumption from the reference
// profile, then derive the economics. Data flows strictly forward; every
// series is allocated per run and discarded with it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"pv_estimator/internal/config"
	"pv_estimator/internal/economics"
	"pv_estimator/internal/model"
	"pv_estimator/internal/profile"
	"pv_estimator/internal/simulation"
	"pv_estimator/internal/weather"
)

// specificYieldKWhPerKWp is the sizing heuristic: roughly 1000 kWh of annual
// yield per installed kWp.
const specificYieldKWhPerKWp = 1000

// SizeSystem derives the nominal system capacity from annual demand.
func SizeSystem(annualDemandKWh float64) model.SystemSpec {
	return model.SystemSpec{CapacityKWp: annualDemandKWh / specificYieldKWhPerKWp}
}

// Pipeline owns the collaborators of one estimator instance. It holds no
// request state; Run may be called concurrently.
type Pipeline struct {
	weather weather.Provider
	engine  simulation.Engine
	profile *profile.Profile
	cfg     config.Config
	log     *logrus.Logger
}

func New(provider weather.Provider, engine simulation.Engine, ref *profile.Profile, cfg config.Config, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		weather: provider,
		engine:  engine,
		profile: ref,
		cfg:     cfg,
		log:     log,
	}
}

// Run executes one full pass for the given house. It validates the request,
// and either completes fully or fails; no partial results are returned.
func (p *Pipeline) Run(ctx context.Context, house model.House) (model.EconomicResult, error) {
	if err := house.Validate(); err != nil {
		return model.EconomicResult{}, err
	}

	spec := SizeSystem(house.AnnualDemandKWh)

	production, err := p.estimateProduction(ctx, house, spec)
	if err != nil {
		return model.EconomicResult{}, err
	}

	demand, err := p.profile.Scaled(house.AnnualDemandKWh, p.cfg.CanonicalYear)
	if err != nil {
		return model.EconomicResult{}, fmt.Errorf("scaling consumption profile: %w", err)
	}

	result := economics.Compute(production, demand, spec, p.cfg.Tariffs)

	p.log.WithFields(logrus.Fields{
		"capacity_kwp":          spec.CapacityKWp,
		"annual_production_kwh": result.AnnualProductionKWh,
		"cost_savings":          result.CostSavings,
		"feed_in_profit":        result.GridFeedInProfit,
	}).Debug("pipeline run complete")

	return result, nil
}

// estimateProduction fetches the TMY weather, re-stamps it onto the
// canonical year and simulates the hourly AC output.
func (p *Pipeline) estimateProduction(ctx context.Context, house model.House, spec model.SystemSpec) (model.Series, error) {
	records, err := p.weather.TMY(ctx, house.Location)
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Time = model.CanonicalTime(records[i].Time, p.cfg.CanonicalYear)
	}

	production := p.engine.Simulate(records, house.Location, house.Rooftop, spec)
	// TMY months come from different source years; after the year
	// substitution the sequence is not guaranteed chronological.
	production.SortByTime()
	return production, nil
}
