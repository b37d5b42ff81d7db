package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"pv_estimator/internal/config"
	"pv_estimator/internal/pipeline"
	"pv_estimator/internal/profile"
	"pv_estimator/internal/server"
	"pv_estimator/internal/simulation"
	"pv_estimator/internal/weather"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to YAML policy config (optional)")
	addr := pflag.String("addr", "", "listen address (overrides config)")
	profilePath := pflag.String("profile", "", "path to the reference load profile CSV (overrides config)")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *profilePath != "" {
		cfg.ProfilePath = *profilePath
	}

	// The reference profile is static; load it once and share it read-only.
	ref, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		log.WithError(err).Fatal("loading reference load profile")
	}
	if ref.Dropped > 0 {
		log.WithFields(logrus.Fields{
			"dropped":   ref.Dropped,
			"intervals": ref.Len(),
		}).Warn("reference profile rows dropped; annual total shrinks before scaling")
	}
	log.WithFields(logrus.Fields{
		"intervals": ref.Len(),
		"total_kwh": ref.TotalKWh,
	}).Info("reference load profile loaded")

	provider := weather.NewPVGISClient(cfg.PVGISBaseURL, cfg.TMYStartYear, cfg.WeatherTimeout)
	pipe := pipeline.New(provider, simulation.NewArrayModel(), ref, cfg, log)
	srv := server.New(pipe, log)

	log.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
