package types

// QueryRequest is an incoming text query from the frontend or the voice path.
type QueryRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// Action describes the downstream action implied by a query.
// Params is always identical to QueryResponse.Slots.
type Action struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// QueryResponse is the full understanding result for one utterance.
type QueryResponse struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Slots      map[string]any `json:"slots"`
	Reply      string         `json:"reply"`
	Action     Action         `json:"action"`
	UserID     string         `json:"user_id,omitempty"`
	Locale     string         `json:"locale"`
}

// TranscriptionSegment is one timed span of a transcript.
type TranscriptionSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is what the STT collaborator returns.
type TranscriptionResult struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
}

// VoiceUnderstandResponse bundles a transcript with its query result.
type VoiceUnderstandResponse struct {
	Transcript TranscriptionResult `json:"transcript"`
	Query      QueryResponse       `json:"query"`
}

// ProductSearchRequest is the query the product-finder collaborator accepts.
type ProductSearchRequest struct {
	Query    string  `json:"query"`
	Category string  `json:"category,omitempty"`
	MinPrice float64 `json:"min_price,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
	Brand    string  `json:"brand,omitempty"`
	Limit    int     `json:"limit,omitempty"`
}

// Product is one ranked record from the product-finder collaborator.
type Product struct {
	ID       string  `json:"id,omitempty"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Currency string  `json:"currency,omitempty"`
	URL      string  `json:"url,omitempty"`
	Image    string  `json:"image,omitempty"`
	Source   string  `json:"source,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// ProductSearchResponse is the ranked result list with the query echoed back.
type ProductSearchResponse struct {
	Query    ProductSearchRequest `json:"query"`
	Products []Product            `json:"products"`
	Count    int                  `json:"count"`
}

// ErrorDetail carries a service-level error to the caller.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// EventMessage is pushed to websocket subscribers for every processed query.
type EventMessage struct {
	Type      string `json:"type"` // "query", "transcript", "error", "heartbeat"
	Payload   any    `json:"payload"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
}
