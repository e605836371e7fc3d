package batches

import "encoding/json"

// CreateInput is the body of POST /batches. Optional columns keep their
// JSON form so Postgres coerces them to the column types.
type CreateInput struct {
	ID              string          `json:"id" validate:"required"`
	Title           string          `json:"title" validate:"required"`
	StreamID        json.RawMessage `json:"stream_id,omitempty"`
	Subtitle        json.RawMessage `json:"subtitle,omitempty"`
	Description     json.RawMessage `json:"description,omitempty"`
	ClassName       json.RawMessage `json:"class_name,omitempty"`
	TargetYear      json.RawMessage `json:"target_year,omitempty"`
	BatchDate       json.RawMessage `json:"batch_date,omitempty"`
	EndDate         json.RawMessage `json:"end_date,omitempty"`
	Duration        json.RawMessage `json:"duration,omitempty"`
	Price           json.RawMessage `json:"price,omitempty"`
	RegistrationFee json.RawMessage `json:"registration_fee,omitempty"`
	SyllabusURL     json.RawMessage `json:"syllabus_url,omitempty"`
	ImageURL        json.RawMessage `json:"image_url,omitempty"`
	ColorTheme      json.RawMessage `json:"color_theme,omitempty"`
}

// ListResult wraps the batch listing.
type ListResult struct {
	Count   int               `json:"count"`
	Batches []json.RawMessage `json:"batches"`
}
