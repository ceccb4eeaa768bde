// Package detection is the client for the remote card detection service.
// It posts an image as multipart form content to /detect and queries /health.
package detection

// HealthyStatus is the /health status reported by a nominal service.
const HealthyStatus = "healthy"

// Result is the decoded /detect response.
type Result struct {
	NumCardsDetected int    `json:"num_cards_detected"`
	Cards            []Card `json:"cards"`
}

// Card describes one detected card. Optional fields are pointers so that an
// absent value is distinguishable from a zero one.
type Card struct {
	CardNumber          *string  `json:"card_number"`
	IsValid             bool     `json:"is_valid"`
	CardholderName      *string  `json:"cardholder_name"`
	ExpiryDate          *string  `json:"expiry_date"`
	DetectionConfidence *float64 `json:"detection_confidence"`
	BBox                BBox     `json:"bbox"`
	AllText             []Text   `json:"all_text"`
}

// BBox is a corner pair: x_min, y_min, x_max, y_max.
type BBox [4]int

func (b BBox) X() int      { return b[0] }
func (b BBox) Y() int      { return b[1] }
func (b BBox) Width() int  { return b[2] - b[0] }
func (b BBox) Height() int { return b[3] - b[1] }

// Text is one OCR fragment found on a card.
type Text struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Health is the decoded /health response.
type Health struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// Healthy reports whether the service declared itself nominal.
func (h *Health) Healthy() bool {
	return h != nil && h.Status == HealthyStatus
}

// Upload is the image sent to /detect.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
