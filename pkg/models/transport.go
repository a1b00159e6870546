package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EstimateRequest is the JSON body of the standalone height endpoint
type EstimateRequest struct {
	Distance *float64 `json:"distance" binding:"required"`
	Angle    *float64 `json:"angle" binding:"required"`
}

// GateResponse reports the acceptance decision for one image
type GateResponse struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Report   string        `json:"report"`
	Image    CapturedImage `json:"image"`
}

// InspectionResponse is the one-shot result of the full workflow
type InspectionResponse struct {
	SessionID         string                `json:"session_id"`
	Stage             Stage                 `json:"stage"`
	Timestamp         string                `json:"timestamp"`
	ProcessingTimeSec float64               `json:"processing_time_sec"`
	Gate              GateResponse          `json:"gate"`
	Sharpness         *SharpnessAdvice      `json:"sharpness,omitempty"`
	Height            *HeightEstimate       `json:"height,omitempty"`
	Result            *IdentificationResult `json:"result,omitempty"`
}

// SharpnessAdvice is an advisory blur measurement; it never changes the gate decision
type SharpnessAdvice struct {
	LaplacianVariance float64 `json:"laplacian_variance"`
	Blurry            bool    `json:"blurry"`
	Message           string  `json:"message,omitempty"`
}
