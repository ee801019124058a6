package dto

type StationResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type RouteResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Stations []StationResponse `json:"stations"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}
