// Package weather fetches one representative year of hourly weather from the
// PVGIS climatology service.
package weather

import (
	"context"
	"errors"
	"time"

	"pv_estimator/internal/model"
)

// ErrNoData marks any failure to obtain a usable weather series: unreachable
// provider, timeout, no data for the coordinates, or an empty response. The
// pipeline must abort on it rather than substitute zero production.
var ErrNoData = errors.New("weather data unavailable")

// Record is one hour of typical-meteorological-year weather.
type Record struct {
	Time      time.Time
	GHI       float64 // global horizontal irradiance, W/m²
	DNI       float64 // direct normal irradiance, W/m²
	DHI       float64 // diffuse horizontal irradiance, W/m²
	AirTemp   float64 // ambient temperature, °C
	WindSpeed float64 // wind speed at 10 m, m/s
}

// Provider returns one year of hourly weather records for a location.
type Provider interface {
	TMY(ctx context.Context, loc model.Location) ([]Record, error)
}
