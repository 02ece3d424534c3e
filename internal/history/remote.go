package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// RemoteClient queries the telemetry broker's historical dataset over
// HTTP. The endpoint lives on the same host as the live feed.
type RemoteClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// BaseURLFromWS derives the HTTP base URL from a websocket endpoint
// URL: ws becomes http, wss becomes https, host and port carry over.
func BaseURLFromWS(wsURL string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket url: %w", err)
	}

	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	if u.Host == "" {
		return "", fmt.Errorf("websocket url has no host: %s", wsURL)
	}
	return scheme + "://" + u.Host, nil
}

// NewRemoteClient creates a client against the given HTTP base URL.
func NewRemoteClient(baseURL string, client *http.Client, logger *zap.Logger) *RemoteClient {
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteClient{baseURL: baseURL, client: client, logger: logger}
}

// dmy formats a date the way the historial endpoint expects.
func dmy(t time.Time) string {
	return t.Format("02/01/2006")
}

// Fetch retrieves the remote records for a filter. Year mode has no
// remote equivalent and always returns an empty result.
func (c *RemoteClient) Fetch(ctx context.Context, f Filter) ([]Record, error) {
	params := url.Values{}
	switch f.Mode {
	case ModeDay:
		params.Set("fecha", dmy(f.Day))
	case ModeRange:
		params.Set("inicio", dmy(f.Start))
		params.Set("fin", dmy(f.End))
	case ModeMonth:
		params.Set("mes", fmt.Sprintf("%02d", int(f.Month)))
		params.Set("anio", fmt.Sprintf("%d", f.Year))
	default:
		return nil, nil
	}

	endpoint := c.baseURL + "/api/sensores/historial?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding historial response: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := recordFromRow(row)
		if !ok {
			c.logger.Debug("skipping historial row without usable timestamp")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordFromRow converts one remote row, tolerating the temp/conduct
// field aliases older broker flows emit.
func recordFromRow(row map[string]any) (Record, bool) {
	ts, ok := row["ts"].(string)
	if !ok {
		return Record{}, false
	}
	parsed, err := parseTS(ts)
	if err != nil {
		return Record{}, false
	}

	rec := Record{
		TS:            parsed,
		PH:            sensor.Coerce(row["ph"]),
		Turbidez:      sensor.Coerce(row["turbidez"]),
		TDS:           sensor.Coerce(row["tds"]),
		Temperatura:   sensor.Coerce(firstPresent(row, "temperatura", "temp")),
		Conductividad: sensor.Coerce(firstPresent(row, "conductividad", "conduct")),
		ORP:           sensor.Coerce(row["orp"]),
	}
	return rec, true
}

func firstPresent(row map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// zonelessLayouts cover brokers that log timestamps without a zone;
// those stamps are wall-clock local time, not UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTS(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	for _, layout := range zonelessLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
