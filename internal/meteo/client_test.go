package meteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const forecastJSON = `{
	"latitude": 52.52,
	"longitude": 13.405,
	"timezone": "GMT",
	"current_units": {"time": "iso8601", "temperature_2m": "°C", "relative_humidity_2m": "%", "wind_speed_10m": "km/h"},
	"current": {"time": "2025-03-01T12:00", "temperature_2m": 8.4, "relative_humidity_2m": 71, "wind_speed_10m": 12.2},
	"hourly_units": {"time": "iso8601", "temperature_2m": "°C", "relative_humidity_2m": "%", "wind_speed_10m": "km/h"},
	"hourly": {
		"time": ["2025-03-01T12:00", "2025-03-01T13:00"],
		"temperature_2m": [8.4, 9.1],
		"relative_humidity_2m": [71, 68],
		"wind_speed_10m": [12.2, 10.8]
	}
}`

func TestForecastParsesResponse(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	fc, err := NewClient(srv.URL).Forecast(context.Background(), 52.52, 13.405)
	require.NoError(t, err)

	require.Equal(t, "/v1/forecast", gotPath)
	require.Equal(t, []string{"52.52"}, gotQuery["latitude"])
	require.Equal(t, []string{"13.405"}, gotQuery["longitude"])
	require.Equal(t, []string{variables}, gotQuery["current"])
	require.Equal(t, []string{variables}, gotQuery["hourly"])

	require.Equal(t, 8.4, fc.Current.Temperature)
	require.Equal(t, "°C", fc.CurrentUnits.Temperature)
	require.Equal(t, 2, fc.Hourly.Len())
	require.Equal(t, 10.8, fc.Hourly.WindSpeed[1])
}

func TestForecastAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of range", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Forecast(context.Background(), 999, 999)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "open-meteo: unexpected status 400")
}

func TestSeriesLen(t *testing.T) {
	s := Series{
		Time:             []string{"a", "b", "c"},
		Temperature:      []float64{1, 2, 3},
		RelativeHumidity: []float64{1, 2},
		WindSpeed:        []float64{1, 2, 3},
	}
	require.Equal(t, 2, s.Len())
	require.Zero(t, Series{}.Len())
}
