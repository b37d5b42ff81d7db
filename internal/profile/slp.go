// Package profile loads the reference standard load profile: a
// semicolon-delimited, Latin-1 CSV with a 10-line preamble, German decimal
// commas, and one row per 15-minute interval of the reference year. The
// household column (H00) is scaled linearly to the requested annual demand;
// the demand shape itself is not personalized.
package profile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"pv_estimator/internal/model"
)

// ErrEmptyProfile means the file yielded no usable rows or a non-positive
// reference total, so the scaling factor is undefined.
var ErrEmptyProfile = errors.New("reference profile has no usable data")

const (
	preambleLines   = 10
	timestampColumn = "Zeitstempel von"
	energyColumn    = "H00 [kWh]"
	timestampLayout = "02.01.2006 15:04"
)

type interval struct {
	time time.Time // naive reference-year timestamp
	kwh  float64
}

// Profile is the parsed reference profile, loaded once at startup and shared
// read-only across requests.
type Profile struct {
	intervals []interval
	// TotalKWh is the reference annual energy after dropping bad rows.
	TotalKWh float64
	// Dropped counts rows discarded for missing or unparseable values. The
	// caller should surface a non-zero count as a warning: dropping shrinks
	// the reference total slightly before scaling.
	Dropped int
}

// Load reads and parses the profile file at path.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference profile: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing reference profile %s: %w", path, err)
	}
	return p, nil
}

// Parse reads a Latin-1 encoded profile from r.
func Parse(r io.Reader) (*Profile, error) {
	decoded := bufio.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	// Skip the preamble by physical lines; csv.Reader would silently swallow
	// blank lines and miscount.
	for i := 0; i < preambleLines; i++ {
		if _, err := decoded.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("reading preamble line %d: %w", i+1, err)
		}
	}

	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	tsIdx, kwhIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case timestampColumn:
			tsIdx = i
		case energyColumn:
			kwhIdx = i
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("missing column %q in header", timestampColumn)
	}
	if kwhIdx < 0 {
		return nil, fmt.Errorf("missing column %q in header", energyColumn)
	}

	p := &Profile{}
	lineNum := preambleLines + 1
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", lineNum, err)
		}

		iv, ok := parseRow(record, tsIdx, kwhIdx)
		if !ok {
			p.Dropped++
			continue
		}
		p.intervals = append(p.intervals, iv)
		p.TotalKWh += iv.kwh
	}

	if len(p.intervals) == 0 || p.TotalKWh <= 0 {
		return nil, fmt.Errorf("%w (%d rows dropped)", ErrEmptyProfile, p.Dropped)
	}
	return p, nil
}

func parseRow(record []string, tsIdx, kwhIdx int) (interval, bool) {
	if tsIdx >= len(record) || kwhIdx >= len(record) {
		return interval{}, false
	}

	ts, err := time.Parse(timestampLayout, strings.TrimSpace(record[tsIdx]))
	if err != nil {
		return interval{}, false
	}

	raw := strings.TrimSpace(record[kwhIdx])
	if raw == "" {
		return interval{}, false
	}
	kwh, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return interval{}, false
	}

	return interval{time: ts, kwh: kwh}, true
}

// Len returns the number of usable 15-minute intervals.
func (p *Profile) Len() int {
	return len(p.intervals)
}

// Scaled returns the demand series for the requested annual demand, re-stamped
// onto the canonical year at 15-minute resolution. Each value is energy in
// kWh per interval. A zero demand yields an all-zero series.
func (p *Profile) Scaled(annualDemandKWh float64, canonicalYear int) (model.Series, error) {
	if p.TotalKWh <= 0 {
		return nil, ErrEmptyProfile
	}
	factor := annualDemandKWh / p.TotalKWh

	series := make(model.Series, 0, len(p.intervals))
	for _, iv := range p.intervals {
		series = append(series, model.Point{
			Time:  model.CanonicalTime(iv.time, canonicalYear),
			Value: iv.kwh * factor,
		})
	}
	series.SortByTime()
	return series, nil
}
