package domain

// BatchItem is one request in a batch classification.
type BatchItem struct {
	ID      string `json:"id"`
	Request string `json:"request"`
}

// BatchResult pairs an item with its classification or the error that prevented it.
type BatchResult struct {
	ID             string          `json:"id"`
	Request        string          `json:"request"`
	Classification *Classification `json:"classification,omitempty"`
	Error          string          `json:"error,omitempty"`
}
