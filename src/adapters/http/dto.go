package http

type StatusResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	Message      string   `json:"message"`
	ID           int64    `json:"id"`
	Advertencias []string `json:"advertencias,omitempty"`
}

type UpdatedResponse struct {
	Message      string   `json:"message"`
	Advertencias []string `json:"advertencias,omitempty"`
}

type ErrorResponse struct {
	Error     string          `json:"error"`
	Campo     string          `json:"campo,omitempty"`
	Motivo    string          `json:"motivo,omitempty"`
	Archivo   string          `json:"archivo,omitempty"`
	Recibidos map[string]bool `json:"recibidos,omitempty"`
	Stack     string          `json:"stack,omitempty"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Filename string `json:"filename"`
}

type UploadMultipleResponse struct {
	URLs []string `json:"urls"`
}
