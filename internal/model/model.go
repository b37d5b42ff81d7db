package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks request validation failures. Handlers match it with
// errors.Is to map the failure to a client error instead of a server error.
var ErrInvalidInput = errors.New("invalid input")

// Location is a geographic point in floating-point degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Rooftop describes the orientation of the roof surface carrying the modules.
// Tilt is measured from horizontal (0 = flat, 90 = vertical wall), azimuth
// clockwise from north (0 = N, 90 = E, 180 = S, 270 = W).
//
// The azimuth wire name keeps the established API contract spelling.
type Rooftop struct {
	TiltAngle    float64 `json:"tilt_angle"`
	AzimuthAngle float64 `json:"azimut_angle"`
}

// House is the immutable input to one pipeline run.
type House struct {
	Location        Location `json:"location"`
	Rooftop         Rooftop  `json:"rooftop"`
	AnnualDemandKWh float64  `json:"annual_el_demand"`
}

// Validate checks the request invariants before the pipeline runs.
func (h House) Validate() error {
	if h.Location.Latitude < -90 || h.Location.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f outside [-90, 90]", ErrInvalidInput, h.Location.Latitude)
	}
	if h.Location.Longitude < -180 || h.Location.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f outside [-180, 180]", ErrInvalidInput, h.Location.Longitude)
	}
	if h.Rooftop.TiltAngle < 0 || h.Rooftop.TiltAngle > 90 {
		return fmt.Errorf("%w: tilt angle %.1f outside [0, 90]", ErrInvalidInput, h.Rooftop.TiltAngle)
	}
	if h.Rooftop.AzimuthAngle < 0 || h.Rooftop.AzimuthAngle >= 360 {
		return fmt.Errorf("%w: azimuth angle %.1f outside [0, 360)", ErrInvalidInput, h.Rooftop.AzimuthAngle)
	}
	if h.AnnualDemandKWh <= 0 {
		return fmt.Errorf("%w: annual demand %.1f kWh must be positive", ErrInvalidInput, h.AnnualDemandKWh)
	}
	return nil
}

// SystemSpec is the sized PV system, derived once per request and read-only
// thereafter.
type SystemSpec struct {
	CapacityKWp float64
}

// EconomicResult is the output of one pipeline run. Monthly arrays are in
// calendar order, January first.
type EconomicResult struct {
	AnnualProductionKWh   float64
	MonthlyProductionKWh  [12]float64
	CostSavings           float64
	GridFeedInProfit      float64
	PaybackYears          float64
	PaybackDefined        bool
	AnnualCO2ReductionKg  float64
	MonthlyCO2ReductionKg [12]float64
}

// MonthNames labels monthly values in human-readable output.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}
