package geo

import (
	"fmt"
	"strconv"
)

// Candidate is one geocoding match for a search query. Nominatim serializes
// coordinates as JSON strings, so they are kept raw and parsed on demand.
type Candidate struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Coordinates parses the candidate's latitude and longitude.
func (c Candidate) Coordinates() (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", c.Lat, err)
	}
	lon, err = strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", c.Lon, err)
	}
	return lat, lon, nil
}
