package meteo

// Units holds the display units for the requested variables.
type Units struct {
	Time             string `json:"time"`
	Temperature      string `json:"temperature_2m"`
	RelativeHumidity string `json:"relative_humidity_2m"`
	WindSpeed        string `json:"wind_speed_10m"`
}

// Sample is a single observation of the current conditions.
type Sample struct {
	Time             string  `json:"time"`
	Temperature      float64 `json:"temperature_2m"`
	RelativeHumidity float64 `json:"relative_humidity_2m"`
	WindSpeed        float64 `json:"wind_speed_10m"`
}

// Series holds the hourly forecast as parallel arrays, one entry per hour.
type Series struct {
	Time             []string  `json:"time"`
	Temperature      []float64 `json:"temperature_2m"`
	RelativeHumidity []float64 `json:"relative_humidity_2m"`
	WindSpeed        []float64 `json:"wind_speed_10m"`
}

// Forecast is the Open-Meteo response for one coordinate pair.
type Forecast struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Timezone     string  `json:"timezone"`
	CurrentUnits Units   `json:"current_units"`
	Current      Sample  `json:"current"`
	HourlyUnits  Units   `json:"hourly_units"`
	Hourly       Series  `json:"hourly"`
}

// Len returns the number of complete hourly rows, bounded by the shortest of
// the parallel arrays.
func (s Series) Len() int {
	n := len(s.Time)
	if len(s.Temperature) < n {
		n = len(s.Temperature)
	}
	if len(s.RelativeHumidity) < n {
		n = len(s.RelativeHumidity)
	}
	if len(s.WindSpeed) < n {
		n = len(s.WindSpeed)
	}
	return n
}
