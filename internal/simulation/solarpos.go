package simulation

import (
	"math"
	"time"
)

const degToRad = math.Pi / 180

// solarPosition returns the sun's zenith and azimuth in degrees for a UTC
// timestamp and location. Azimuth is clockwise from north (0 = N, 180 = S).
func solarPosition(t time.Time, latitude, longitude float64) (zenith, azimuth float64) {
	doy := float64(t.YearDay())

	// Fractional hour in apparent solar time: UTC, longitude offset, and the
	// equation of time correction.
	utcHours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	solarHours := utcHours + longitude/15 + equationOfTime(doy)/60

	decl := declination(doy)
	hourAngle := (solarHours - 12) * 15 * degToRad

	lat := latitude * degToRad
	cosZenith := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(hourAngle)
	cosZenith = clamp(cosZenith, -1, 1)
	zenithRad := math.Acos(cosZenith)

	sinZenith := math.Sin(zenithRad)
	if sinZenith < 1e-6 {
		// Sun at the zenith: azimuth is undefined, any value works.
		return zenithRad / degToRad, 180
	}

	cosAz := (math.Sin(decl)*math.Cos(lat) - math.Cos(decl)*math.Sin(lat)*math.Cos(hourAngle)) / sinZenith
	cosAz = clamp(cosAz, -1, 1)
	azRad := math.Acos(cosAz)
	// Before solar noon the sun is in the east, after noon in the west.
	if hourAngle > 0 {
		azRad = 2*math.Pi - azRad
	}

	return zenithRad / degToRad, azRad / degToRad
}

// declination returns the solar declination in radians (Cooper's equation).
func declination(dayOfYear float64) float64 {
	return 23.45 * degToRad * math.Sin(2*math.Pi*(284+dayOfYear)/365)
}

// equationOfTime returns the apparent/mean solar time offset in minutes.
func equationOfTime(dayOfYear float64) float64 {
	b := 2 * math.Pi * (dayOfYear - 81) / 364
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
