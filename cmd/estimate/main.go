// Command estimate runs the full pipeline once for flag-provided inputs and
// prints the result as JSON. Useful for sanity-checking policy constants
// without standing up the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"pv_estimator/internal/config"
	"pv_estimator/internal/model"
	"pv_estimator/internal/pipeline"
	"pv_estimator/internal/profile"
	"pv_estimator/internal/simulation"
	"pv_estimator/internal/weather"
)

func main() {
	lat := pflag.Float64("lat", 48.1374, "latitude in degrees")
	lon := pflag.Float64("lon", 11.5755, "longitude in degrees")
	tilt := pflag.Float64("tilt", 70, "roof tilt angle in degrees")
	azimuth := pflag.Float64("azimuth", 135, "roof azimuth in degrees (0=N, 180=S)")
	demand := pflag.Float64("demand", 5000, "annual electricity demand in kWh")
	configPath := pflag.StringP("config", "c", "", "path to YAML policy config (optional)")
	profilePath := pflag.String("profile", "", "path to the reference load profile CSV (overrides config)")
	monthly := pflag.BoolP("monthly", "m", false, "print monthly production by month name")
	pflag.Parse()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if *profilePath != "" {
		cfg.ProfilePath = *profilePath
	}

	ref, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		log.WithError(err).Fatal("loading reference load profile")
	}
	if ref.Dropped > 0 {
		log.WithField("dropped", ref.Dropped).Warn("reference profile rows dropped")
	}

	provider := weather.NewPVGISClient(cfg.PVGISBaseURL, cfg.TMYStartYear, cfg.WeatherTimeout)
	pipe := pipeline.New(provider, simulation.NewArrayModel(), ref, cfg, log)

	house := model.House{
		Location:        model.Location{Latitude: *lat, Longitude: *lon},
		Rooftop:         model.Rooftop{TiltAngle: *tilt, AzimuthAngle: *azimuth},
		AnnualDemandKWh: *demand,
	}

	result, err := pipe.Run(context.Background(), house)
	if err != nil {
		log.WithError(err).Fatal("pipeline run failed")
	}

	out := map[string]any{
		"annual_el_production":  result.AnnualProductionKWh,
		"monthly_el_production": result.MonthlyProductionKWh[:],
		"cost_savings_GGV":      result.CostSavings,
		"profit_grid_feed_in":   result.GridFeedInProfit,
		"annual_CO2_reduction":  result.AnnualCO2ReductionKg,
		"monthly_CO2_reduction": result.MonthlyCO2ReductionKg[:],
	}
	if result.PaybackDefined {
		out["payback_period"] = result.PaybackYears
	} else {
		out["payback_period"] = nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.WithError(err).Fatal("encoding result")
	}

	if *monthly {
		for i, name := range model.MonthNames {
			fmt.Printf("%-10s %8.2f kWh\n", name, result.MonthlyProductionKWh[i])
		}
	}
}
