package domain

// A named stop on a bus line. Names are not unique across routes.
type Station struct {
	Name   string      `yaml:"name" json:"name" validate:"required"`
	Coords Coordinates `yaml:"coords" json:"coords"`
}

// Represents a bus line.
// The order of Stations defines the direction of travel; navigation segments
// are only legal between adjacent stations (i -> i+1 and the reverse).
// ID travels inside button payloads, so it is short and free of "|".
type Route struct {
	ID       string    `yaml:"id" json:"id" validate:"required,max=40,excludes=|"`
	Name     string    `yaml:"name" json:"name"`
	Stations []Station `yaml:"stations" json:"stations" validate:"min=2,dive"`
}
