// Package fields declares, per resource, which fields clients may write and
// which belong to the server or database triggers.
package fields

import (
	"sort"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

// Schema lists the writable and server-owned fields of a resource.
type Schema struct {
	Resource    string
	Writable    []string
	ServerOwned []string
}

// Filter keeps writable fields, silently drops server-owned ones and rejects
// anything else.
func (s Schema) Filter(input map[string]any) (map[string]any, error) {
	writable := toSet(s.Writable)
	owned := toSet(s.ServerOwned)

	out := make(map[string]any, len(input))
	var unknown []string
	for key, value := range input {
		switch {
		case writable[key]:
			out[key] = value
		case owned[key]:
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, httpx.Validation("unknown field for %s: %s", s.Resource, unknown[0])
	}
	if len(out) == 0 {
		return nil, httpx.Validation("no updatable fields for %s", s.Resource)
	}
	return out, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Resource schemas.
var (
	Users = Schema{
		Resource:    "users",
		Writable:    []string{"first_name", "last_name", "phone", "role", "subject"},
		ServerOwned: []string{"id", "email", "password", "full_name", "name", "created_at", "updated_at"},
	}
	Batches = Schema{
		Resource: "batches",
		Writable: []string{
			"stream_id", "title", "subtitle", "description", "class_name", "target_year",
			"batch_date", "end_date", "duration", "price", "registration_fee",
			"syllabus_url", "image_url", "color_theme",
		},
		ServerOwned: []string{"id", "created_at", "updated_at", "streams", "stream_name"},
	}
	Chapters = Schema{
		Resource:    "chapters",
		Writable:    []string{"batch_id", "subject_id", "title", "chapter_number"},
		ServerOwned: []string{"id", "created_at", "updated_at"},
	}
	Announcements = Schema{
		Resource:    "announcements",
		Writable:    []string{"title", "message", "is_important", "tags"},
		ServerOwned: []string{"id", "batch_id", "author_id", "created_at", "updated_at"},
	}
)
