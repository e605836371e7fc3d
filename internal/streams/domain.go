package streams

import "encoding/json"

// CreateInput is the body of POST /streams.
type CreateInput struct {
	Title       string          `json:"title" validate:"required"`
	Description json.RawMessage `json:"description,omitempty"`
}

// ListResult wraps the stream listing.
type ListResult struct {
	Count   int               `json:"count"`
	Streams []json.RawMessage `json:"streams"`
}
