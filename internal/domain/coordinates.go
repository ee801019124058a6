package domain

import "fmt"

// Immutable geographic coordinates of a station.
type Coordinates struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
}

// Format coordinates as "lat,lon" for map URLs.
func (c Coordinates) String() string { return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon) }
