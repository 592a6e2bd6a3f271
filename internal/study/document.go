// Package study owns the study-planner document: the weekly schedule,
// notes, file records and calendar events.
package study

import (
	"encoding/json"
	"fmt"
	"time"

	"organizador/internal/core"
	"organizador/internal/ident"
)

const (
	EventStudy      EventType = "study"
	EventExam       EventType = "exam"
	EventAssignment EventType = "assignment"
	EventMeeting    EventType = "meeting"
	EventOther      EventType = "other"
)

type (
	// EventType classifies calendar events.
	EventType string

	// Session is one block on the weekly schedule. Which weekday it
	// belongs to is positional: sessions live in Document.WeeklySchedule
	// under their day index.
	Session struct {
		ID       string        `json:"id"`
		Subject  string        `json:"subject"`
		Time     string        `json:"time"`     // "HH:MM"
		Duration float64       `json:"duration"` // hours
		Priority core.Priority `json:"priority"`
		Color    string        `json:"color"`
	}

	Note struct {
		ID      string    `json:"id"`
		Content string    `json:"content"`
		Date    time.Time `json:"date"`
		Tags    []string  `json:"tags"`
	}

	// FileRecord holds upload metadata only. The bytes themselves are
	// never persisted.
	FileRecord struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Type       string    `json:"type"` // extension
		Size       string    `json:"size"` // formatted, e.g. "1.50 KB"
		UploadedAt time.Time `json:"uploadedAt"`
	}

	Event struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Date        time.Time `json:"date"`
		Type        EventType `json:"type"`
		Time        *string   `json:"time"`
		Description *string   `json:"description"`
		Color       string    `json:"color"`
	}

	// WeekSchedule maps weekday index (0 = Sunday) to that day's ordered
	// sessions. A normalized schedule always carries exactly keys 0..6.
	WeekSchedule map[int][]Session

	// Document is the single persisted study document.
	Document struct {
		WeeklySchedule WeekSchedule
		Notes          []Note
		Files          []FileRecord
		Events         []Event

		// extra carries top-level keys written by other versions of
		// the application; they round-trip untouched.
		extra map[string]json.RawMessage
	}
)

func (t EventType) Valid() bool {
	switch t {
	case EventStudy, EventExam, EventAssignment, EventMeeting, EventOther:
		return true
	default:
		return false
	}
}

// PriorityColor is the display color a session gets from its priority.
func PriorityColor(p core.Priority) string {
	switch p {
	case core.PriorityHigh:
		return "#ff6b6b"
	case core.PriorityLow:
		return "#3498db"
	default:
		return "#4a6bff"
	}
}

// EventColor is the display color an event gets from its type.
func EventColor(t EventType) string {
	switch t {
	case EventExam:
		return "#ff6b6b"
	case EventAssignment:
		return "#ffa500"
	case EventMeeting:
		return "#2ecc71"
	case EventOther:
		return "#9b59b6"
	default:
		return "#4a6bff"
	}
}

// EmptyDocument returns the canonical empty normalized shape.
func EmptyDocument() Document {
	sched := make(WeekSchedule, 7)
	for day := 0; day < 7; day++ {
		sched[day] = []Session{}
	}
	return Document{
		WeeklySchedule: sched,
		Notes:          []Note{},
		Files:          []FileRecord{},
		Events:         []Event{},
	}
}

// Normalize completes a raw document into the canonical shape: every
// expected collection exists with its empty default, the weekly schedule has
// exactly keys 0..6, and every record carries an id. Ids already present are
// never reassigned, so normalizing twice is the same as normalizing once.
func (d *Document) Normalize(ids ident.Issuer) {
	if d.WeeklySchedule == nil {
		d.WeeklySchedule = make(WeekSchedule, 7)
	}
	for day := 0; day < 7; day++ {
		sessions := d.WeeklySchedule[day]
		if sessions == nil {
			sessions = []Session{}
		}
		for i := range sessions {
			if sessions[i].ID == "" {
				sessions[i].ID = ids.NewID()
			}
		}
		d.WeeklySchedule[day] = sessions
	}
	// Days outside 0..6 in a malformed document are dropped rather than
	// carried forward.
	for day := range d.WeeklySchedule {
		if day < 0 || day > 6 {
			delete(d.WeeklySchedule, day)
		}
	}

	if d.Notes == nil {
		d.Notes = []Note{}
	}
	for i := range d.Notes {
		if d.Notes[i].ID == "" {
			d.Notes[i].ID = ids.NewID()
		}
	}

	if d.Files == nil {
		d.Files = []FileRecord{}
	}
	for i := range d.Files {
		if d.Files[i].ID == "" {
			d.Files[i].ID = ids.NewID()
		}
	}

	if d.Events == nil {
		d.Events = []Event{}
	}
	for i := range d.Events {
		if d.Events[i].ID == "" {
			d.Events[i].ID = ids.NewID()
		}
	}
}

// Clone deep-copies the document. Mutations run against a clone and only
// replace the live document once the clone has been persisted.
func (d Document) Clone() Document {
	out := Document{
		WeeklySchedule: make(WeekSchedule, len(d.WeeklySchedule)),
		Notes:          make([]Note, len(d.Notes)),
		Files:          append([]FileRecord(nil), d.Files...),
		Events:         make([]Event, len(d.Events)),
	}
	for day, sessions := range d.WeeklySchedule {
		out.WeeklySchedule[day] = append([]Session(nil), sessions...)
	}
	for i, n := range d.Notes {
		n.Tags = append([]string(nil), n.Tags...)
		out.Notes[i] = n
	}
	for i, e := range d.Events {
		if e.Time != nil {
			t := *e.Time
			e.Time = &t
		}
		if e.Description != nil {
			desc := *e.Description
			e.Description = &desc
		}
		out.Events[i] = e
	}
	if d.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(d.extra))
		for k, v := range d.extra {
			out.extra[k] = v
		}
	}
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(d.extra)+4)
	for k, v := range d.extra {
		m[k] = v
	}
	for k, v := range map[string]any{
		"weeklySchedule": d.WeeklySchedule,
		"notes":          d.Notes,
		"files":          d.Files,
		"events":         d.Events,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*d = Document{}
	known := map[string]any{
		"weeklySchedule": &d.WeeklySchedule,
		"notes":          &d.Notes,
		"files":          &d.Files,
		"events":         &d.Events,
	}
	for k, dst := range known {
		raw, ok := m[k]
		if !ok {
			continue
		}
		// A wrong-typed collection degrades to its empty default at
		// normalize time instead of failing the whole document.
		_ = json.Unmarshal(raw, dst)
		delete(m, k)
	}
	if len(m) > 0 {
		d.extra = m
	}
	return nil
}
