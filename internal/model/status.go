package model

// DatabaseStatus is the payload of GET /database_status.
type DatabaseStatus struct {
	Status       string `json:"status,omitempty"`
	Message      string `json:"message"`
	ArticleCount int    `json:"article_count"`
}

// PopulateResult is the payload of POST /populate_sample_data.
type PopulateResult struct {
	Message      string `json:"message"`
	ArticleCount int    `json:"article_count"`
}

// IngestResult is the payload of POST /trigger_arxiv_fetch.
type IngestResult struct {
	Message     string `json:"message"`
	TotalPapers int    `json:"total_papers"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the payload of POST /login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse is the generic {"message": ...} reply.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the generic {"error": ...} reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
