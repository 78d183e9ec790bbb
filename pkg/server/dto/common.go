package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// HealthResponse reports graph store connectivity.
type HealthResponse struct {
	Status       string `json:"status"`
	Store        string `json:"store"`
	CompanyCount int64  `json:"company_count"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version"`
}
