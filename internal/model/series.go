package model

import (
	"sort"
	"time"
)

// Point is one timestamped value of a series. The unit depends on the stage:
// production series carry kW, demand series carry kWh per interval.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of points covering one canonical year.
type Series []Point

// SortByTime sorts the series ascending. Required after canonical-year
// re-stamping: TMY months come from different source years, so substituting
// the year can leave the sequence out of order.
func (s Series) SortByTime() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Time.Before(s[j].Time)
	})
}

// Sum returns the sum of all values.
func (s Series) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// MonthlySums returns per-calendar-month value sums, January first.
func (s Series) MonthlySums() [12]float64 {
	var months [12]float64
	for _, p := range s {
		months[int(p.Time.Month())-1] += p.Value
	}
	return months
}

// CanonicalTime re-stamps t onto the canonical year, keeping
// month/day/hour/minute/second, in UTC.
func CanonicalTime(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
