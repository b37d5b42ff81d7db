package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pv_estimator/internal/model"
)

// pvgisTimeLayout matches the "time(UTC)" field, e.g. "20070101:0010".
const pvgisTimeLayout = "20060102:1504"

// PVGISClient fetches TMY data from the PVGIS API (tmy endpoint, JSON output).
type PVGISClient struct {
	BaseURL    string
	StartYear  int
	HTTPClient *http.Client
}

// NewPVGISClient returns a client against baseURL (e.g.
// "https://re.jrc.ec.europa.eu/api/v5_2"). The timeout bounds the whole
// fetch; an expired deadline surfaces as ErrNoData.
func NewPVGISClient(baseURL string, startYear int, timeout time.Duration) *PVGISClient {
	return &PVGISClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		StartYear:  startYear,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type pvgisResponse struct {
	Outputs struct {
		TMYHourly []pvgisHour `json:"tmy_hourly"`
	} `json:"outputs"`
}

type pvgisHour struct {
	Time string  `json:"time(UTC)"`
	T2m  float64 `json:"T2m"`
	Gh   float64 `json:"G(h)"`
	Gbn  float64 `json:"Gb(n)"`
	Gdh  float64 `json:"Gd(h)"`
	WS   float64 `json:"WS10m"`
}

// TMY fetches the typical meteorological year for loc.
func (c *PVGISClient) TMY(ctx context.Context, loc model.Location) ([]Record, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("startyear", strconv.Itoa(c.StartYear))
	q.Set("outputformat", "json")

	reqURL := c.BaseURL + "/tmy?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building PVGIS request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching TMY: %v", ErrNoData, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// PVGIS answers 400 with a message body for coordinates it has no
		// data for (e.g. open sea).
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: PVGIS returned %d: %s", ErrNoData, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pvgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding TMY response: %v", ErrNoData, err)
	}
	if len(parsed.Outputs.TMYHourly) == 0 {
		return nil, fmt.Errorf("%w: empty TMY series for lat=%.4f lon=%.4f", ErrNoData, loc.Latitude, loc.Longitude)
	}

	records := make([]Record, 0, len(parsed.Outputs.TMYHourly))
	for _, h := range parsed.Outputs.TMYHourly {
		ts, err := time.Parse(pvgisTimeLayout, h.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q in TMY response: %v", ErrNoData, h.Time, err)
		}
		records = append(records, Record{
			Time:      ts.UTC(),
			GHI:       h.Gh,
			DNI:       h.Gbn,
			DHI:       h.Gdh,
			AirTemp:   h.T2m,
			WindSpeed: h.WS,
		})
	}
	return records, nil
}
