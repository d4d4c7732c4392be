package chessdto

// ErrorResponse is the structured failure body returned by the game service.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (e ErrorResponse) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "game service error"
}
