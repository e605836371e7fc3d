package announcements

import "encoding/json"

// CreateInput is the body of POST /announcements.
type CreateInput struct {
	BatchID     string          `json:"batch_id" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Message     string          `json:"message" validate:"required"`
	IsImportant bool            `json:"is_important"`
	Tags        json.RawMessage `json:"tags"`
}

// Record is the row inserted for a new announcement.
type Record struct {
	BatchID     string          `json:"batch_id"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	IsImportant bool            `json:"is_important"`
	Tags        json.RawMessage `json:"tags"`
	AuthorID    string          `json:"author_id"`
}

// NewRecord applies defaults and stamps the author.
func NewRecord(in CreateInput, authorID string) Record {
	tags := in.Tags
	if len(tags) == 0 || string(tags) == "null" {
		tags = json.RawMessage(`[]`)
	}
	return Record{
		BatchID:     in.BatchID,
		Title:       in.Title,
		Message:     in.Message,
		IsImportant: in.IsImportant,
		Tags:        tags,
		AuthorID:    authorID,
	}
}
