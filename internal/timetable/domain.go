package timetable

import (
	"encoding/json"
	"time"
)

// dateLayout is the calendar date format of the date column.
const dateLayout = "2006-01-02"

// ItemInput is one entry of PUT /timetable/{batchId}.
type ItemInput struct {
	Date      string          `json:"date"`
	DayOfWeek json.RawMessage `json:"day_of_week"`
	StartTime json.RawMessage `json:"start_time"`
	EndTime   json.RawMessage `json:"end_time"`
	Subject   json.RawMessage `json:"subject"`
	Topic     json.RawMessage `json:"topic"`
	Faculty   json.RawMessage `json:"faculty"`
}

// Slot is a stored timetable row.
type Slot struct {
	BatchID   string          `json:"batch_id"`
	Date      string          `json:"date"`
	DayOfWeek json.RawMessage `json:"day_of_week"`
	StartTime json.RawMessage `json:"start_time"`
	EndTime   json.RawMessage `json:"end_time"`
	Subject   json.RawMessage `json:"subject"`
	Topic     json.RawMessage `json:"topic"`
	Faculty   json.RawMessage `json:"faculty"`
}

// Columns lists the slot columns written on replace.
var Columns = []string{"batch_id", "date", "day_of_week", "start_time", "end_time", "subject", "topic", "faculty"}

// BuildSlots binds items to the batch. An item without a date is placed on
// the current UTC day.
func BuildSlots(batchID string, items []ItemInput, now time.Time) []Slot {
	today := now.UTC().Format(dateLayout)
	slots := make([]Slot, len(items))
	for i, it := range items {
		date := it.Date
		if date == "" {
			date = today
		}
		slots[i] = Slot{
			BatchID:   batchID,
			Date:      date,
			DayOfWeek: it.DayOfWeek,
			StartTime: it.StartTime,
			EndTime:   it.EndTime,
			Subject:   it.Subject,
			Topic:     it.Topic,
			Faculty:   it.Faculty,
		}
	}
	return slots
}
