package sigfox

import (
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//DeviceRegistrationResponse is returned by the asynchronous bulk creation endpoint
type DeviceRegistrationResponse struct {
	JobID          string   `json:"jobId"`
	Total          int      `json:"total"`
	TransferFailed []string `json:"transferFailed"`
}

//DeviceEditionRequest is the bulk envelope sent to the edition endpoint
type DeviceEditionRequest struct {
	Data []models.DeviceEdition `json:"data"`
}

//DeviceEditionResponse reports the outcome of a bulk edition
type DeviceEditionResponse struct {
	Total int      `json:"total"`
	Error int      `json:"error"`
	Log   []string `json:"log"`
}

//ErrorResponse is the error body returned by the Sigfox API
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

//Credentials are the per tenant API credentials used for basic authentication
type Credentials struct {
	Username string
	Password string
}
