package common

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code  int32  `json:"code" example:"1001"`
	Error string `json:"error" example:"title and transcript required"`
}

// StatusResponse is returned by the liveness endpoints
type StatusResponse struct {
	OK bool `json:"ok" example:"true"`
}

// HealthResponse reports the service status
type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	Environment string `json:"environment" example:"development"`
}
