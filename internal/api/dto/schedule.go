package dto

type ShiftResponse struct {
	Umlauf    string   `json:"umlauf"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Overnight bool     `json:"overnight"`
	Routes    []string `json:"routes"`
}

type ScheduleResponse struct {
	DriverID int64           `json:"driver_id"`
	Date     string          `json:"date"`
	Shifts   []ShiftResponse `json:"shifts"`
}

type RowErrorResponse struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type IngestResponse struct {
	Status string             `json:"status"`
	Total  int                `json:"total"`
	Stored int                `json:"stored"`
	Errors []RowErrorResponse `json:"errors"`
}
