package resources

// Bucket holds batch study material.
const Bucket = "batch-resources"

// Filter narrows a resource listing.
type Filter struct {
	BatchID   string
	SubjectID string
	ChapterID string
}

// UploadInput carries the form fields of POST /resources/upload.
type UploadInput struct {
	BatchID    string `validate:"required"`
	SubjectID  string `validate:"required"`
	ChapterID  string
	Title      string `validate:"required"`
	Type       string `validate:"required"`
	UploadedBy string
}

// Record is the row stored for an uploaded resource.
type Record struct {
	BatchID    string  `json:"batch_id"`
	SubjectID  string  `json:"subject_id"`
	ChapterID  *string `json:"chapter_id"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	FileURL    string  `json:"file_url"`
	FileSize   int64   `json:"file_size"`
	UploadedBy string  `json:"uploaded_by"`
}
