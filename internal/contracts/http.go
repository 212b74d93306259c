package contracts

type ProcessResponse struct {
	Token          string `json:"token"`
	DownloadURL    string `json:"download_url"`
	Filename       string `json:"filename"`
	Messages       int    `json:"messages"`
	Rows           int    `json:"rows"`
	SkippedChunks  int    `json:"skipped_chunks"`
	FailedMessages int    `json:"failed_messages"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}
