// Package simulation turns hourly weather records into an hourly AC power
// series for a fixed-mount PV array: solar geometry, plane-of-array
// transposition, cell temperature and the inverter nameplate limit.
package simulation

import (
	"math"

	"pv_estimator/internal/model"
	"pv_estimator/internal/weather"
)

// Engine computes an hourly AC power output series (kW) for a sized system.
type Engine interface {
	Simulate(records []weather.Record, loc model.Location, roof model.Rooftop, spec model.SystemSpec) model.Series
}

// ArrayModel is a fixed-tilt array with a close-mount glass-glass module
// stack and an inverter sized exactly at the array nameplate.
type ArrayModel struct {
	// GammaPDC is the DC power temperature coefficient per °C.
	GammaPDC float64
	// TempA, TempB, TempDeltaT are the Sandia module temperature parameters.
	TempA, TempB float64
	TempDeltaT   float64
	// Albedo is the ground reflectance used for the reflected POA component.
	Albedo float64
}

// NewArrayModel returns the model with the standard heuristic constants:
// −0.4 %/°C module coefficient and the close-mount glass-glass parameter set.
func NewArrayModel() *ArrayModel {
	return &ArrayModel{
		GammaPDC:   -0.004,
		TempA:      -3.56,
		TempB:      -0.075,
		TempDeltaT: 3,
		Albedo:     0.2,
	}
}

// Simulate returns one point per weather record with the AC power in kW.
// Input records must already be in chronological order; the output series
// keeps their timestamps.
func (m *ArrayModel) Simulate(records []weather.Record, loc model.Location, roof model.Rooftop, spec model.SystemSpec) model.Series {
	series := make(model.Series, 0, len(records))
	for _, rec := range records {
		poa := m.planeOfArray(rec, loc, roof)
		ac := m.acPower(poa, rec, spec.CapacityKWp)
		series = append(series, model.Point{Time: rec.Time, Value: ac})
	}
	return series
}

// planeOfArray transposes the horizontal irradiance components onto the
// tilted plane: beam via the incidence angle, isotropic sky diffuse, and a
// ground-reflected share of the global horizontal.
func (m *ArrayModel) planeOfArray(rec weather.Record, loc model.Location, roof model.Rooftop) float64 {
	zenith, sunAzimuth := solarPosition(rec.Time, loc.Latitude, loc.Longitude)
	if zenith >= 90 {
		// Below the horizon there is still sky diffuse in some datasets;
		// treat the plane as dark to avoid negative-beam artifacts.
		return 0
	}

	tilt := roof.TiltAngle * degToRad
	cosAOI := math.Cos(zenith*degToRad)*math.Cos(tilt) +
		math.Sin(zenith*degToRad)*math.Sin(tilt)*math.Cos((sunAzimuth-roof.AzimuthAngle)*degToRad)

	beam := rec.DNI * math.Max(cosAOI, 0)
	diffuse := rec.DHI * (1 + math.Cos(tilt)) / 2
	reflected := rec.GHI * m.Albedo * (1 - math.Cos(tilt)) / 2

	poa := beam + diffuse + reflected
	if poa < 0 {
		return 0
	}
	return poa
}

// acPower converts plane-of-array irradiance (W/m²) into AC output (kW),
// derating DC power by cell temperature and clipping at the inverter
// nameplate, which equals the array capacity.
func (m *ArrayModel) acPower(poa float64, rec weather.Record, capacityKWp float64) float64 {
	if poa <= 0 || capacityKWp <= 0 {
		return 0
	}

	// Sandia module temperature, then cell temperature via the conductive
	// drop scaled by irradiance.
	moduleTemp := poa*math.Exp(m.TempA+m.TempB*rec.WindSpeed) + rec.AirTemp
	cellTemp := moduleTemp + poa/1000*m.TempDeltaT

	dc := capacityKWp * poa / 1000 * (1 + m.GammaPDC*(cellTemp-25))
	if dc < 0 {
		return 0
	}
	if dc > capacityKWp {
		return capacityKWp
	}
	return dc
}
