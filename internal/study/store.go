package study

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"organizador/internal/core"
	"organizador/internal/ident"
	"organizador/internal/storage"
)

// Store is the sole owner of the study document. Every mutation runs
// normalize→apply→persist against a clone and only replaces the in-memory
// document once the gateway write succeeded, so memory never runs ahead of
// storage.
type Store struct {
	mu  sync.Mutex
	gw  storage.Gateway
	ids ident.Issuer
	doc Document
}

// NewStore wires a store to its gateway and id issuer. Call Load before use.
func NewStore(gw storage.Gateway, ids ident.Issuer) *Store {
	return &Store{gw: gw, ids: ids, doc: EmptyDocument()}
}

// Load reads the persisted document, normalizes it and makes it current.
// A missing or unreadable document falls back to the empty shape. When
// normalization had to repair the document (assign ids, fill collections),
// the repaired form is written back so the fix happens once, not per load.
func (s *Store) Load(ctx context.Context) error {
	doc := Document{}
	found, err := s.gw.Get(ctx, storage.KeyStudy, &doc)
	if err != nil {
		return fmt.Errorf("load study document: %w", err)
	}

	doc.Normalize(s.ids)

	if found {
		if err := s.gw.Put(ctx, storage.KeyStudy, doc); err != nil {
			return fmt.Errorf("write back normalized study document: %w", err)
		}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	slog.InfoContext(ctx, "Study document loaded",
		"found", found,
		"notes", len(doc.Notes),
		"files", len(doc.Files),
		"events", len(doc.Events))
	return nil
}

// Snapshot returns a deep copy of the current document for readers.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// commit persists the mutated clone and swaps it in. On persist failure the
// previous document stays current and the error is surfaced to the caller.
func (s *Store) commit(ctx context.Context, doc Document) error {
	if err := s.gw.Put(ctx, storage.KeyStudy, doc); err != nil {
		return fmt.Errorf("persist study document: %w", err)
	}
	s.doc = doc
	return nil
}

// AddSession appends a session to the given weekday (0 = Sunday). An id is
// assigned when absent; the stored session is returned.
func (s *Store) AddSession(ctx context.Context, day int, session Session) (Session, error) {
	if day < 0 || day > 6 {
		return Session{}, fmt.Errorf("%w: day %d out of range", core.ErrInvalidDate, day)
	}
	if strings.TrimSpace(session.Subject) == "" {
		return Session{}, core.ErrEmptySubject
	}
	if _, err := time.Parse("15:04", session.Time); err != nil {
		return Session{}, fmt.Errorf("%w: time %q", core.ErrInvalidDate, session.Time)
	}
	if !session.Priority.Valid() {
		session.Priority = core.PriorityMedium
	}
	if session.ID == "" {
		session.ID = s.ids.NewID()
	}
	if session.Color == "" {
		session.Color = PriorityColor(session.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.WeeklySchedule[day] = append(doc.WeeklySchedule[day], session)
	if err := s.commit(ctx, doc); err != nil {
		return Session{}, err
	}
	return session, nil
}

// SessionPatch carries the fields an update may overwrite; nil fields are
// retained from the stored session.
type SessionPatch struct {
	Subject  *string
	Time     *string
	Duration *float64
	Priority *core.Priority
}

// UpdateSession merges patch into the session with the given id, wherever on
// the week it currently lives. Unknown id is a benign no-op.
func (s *Store) UpdateSession(ctx context.Context, id string, patch SessionPatch) (Session, bool, error) {
	if patch.Time != nil {
		if _, err := time.Parse("15:04", *patch.Time); err != nil {
			return Session{}, false, fmt.Errorf("%w: time %q", core.ErrInvalidDate, *patch.Time)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	for day := 0; day < 7; day++ {
		for i := range doc.WeeklySchedule[day] {
			session := &doc.WeeklySchedule[day][i]
			if session.ID != id {
				continue
			}
			if patch.Subject != nil {
				session.Subject = *patch.Subject
			}
			if patch.Time != nil {
				session.Time = *patch.Time
			}
			if patch.Duration != nil {
				session.Duration = *patch.Duration
			}
			if patch.Priority != nil && patch.Priority.Valid() {
				session.Priority = *patch.Priority
				session.Color = PriorityColor(*patch.Priority)
			}
			if err := s.commit(ctx, doc); err != nil {
				return Session{}, false, err
			}
			return *session, true, nil
		}
	}
	return Session{}, false, nil
}

// RemoveSession deletes a session by id without the caller naming the day:
// all seven days are searched. Unknown id is a benign no-op.
func (s *Store) RemoveSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	removed := false
	for day := 0; day < 7; day++ {
		sessions := doc.WeeklySchedule[day]
		kept := sessions[:0]
		for _, session := range sessions {
			if session.ID == id {
				removed = true
				continue
			}
			kept = append(kept, session)
		}
		doc.WeeklySchedule[day] = kept
	}
	if !removed {
		return nil
	}
	return s.commit(ctx, doc)
}

// AddNote stores a note stamped with the current time.
func (s *Store) AddNote(ctx context.Context, content string, tags []string) (Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Note{}, core.ErrEmptyContent
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	note := Note{
		ID:      s.ids.NewID(),
		Content: content,
		Date:    time.Now().UTC(),
		Tags:    cleaned,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Notes = append(doc.Notes, note)
	if err := s.commit(ctx, doc); err != nil {
		return Note{}, err
	}
	return note, nil
}

// DeleteNote removes a note by id. Unknown id is a benign no-op.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Notes[:0]
	removed := false
	for _, note := range doc.Notes {
		if note.ID == id {
			removed = true
			continue
		}
		kept = append(kept, note)
	}
	if !removed {
		return nil
	}
	doc.Notes = kept
	return s.commit(ctx, doc)
}

// AddFile records upload metadata for a file. The extension becomes the
// type and the byte count is stored pre-formatted.
func (s *Store) AddFile(ctx context.Context, name string, sizeBytes int64) (FileRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FileRecord{}, core.ErrEmptyTitle
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	record := FileRecord{
		ID:         s.ids.NewID(),
		Name:       name,
		Type:       ext,
		Size:       core.FormatBytes(sizeBytes),
		UploadedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Files = append(doc.Files, record)
	if err := s.commit(ctx, doc); err != nil {
		return FileRecord{}, err
	}
	return record, nil
}

// DeleteFile removes a file record by id. Unknown id is a benign no-op.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Files[:0]
	removed := false
	for _, f := range doc.Files {
		if f.ID == id {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	if !removed {
		return nil
	}
	doc.Files = kept
	return s.commit(ctx, doc)
}

// AddEvent stores a calendar event. An id and a type color are assigned
// when absent.
func (s *Store) AddEvent(ctx context.Context, event Event) (Event, error) {
	if strings.TrimSpace(event.Title) == "" {
		return Event{}, core.ErrEmptyTitle
	}
	if event.Date.IsZero() {
		return Event{}, core.ErrInvalidDate
	}
	if !event.Type.Valid() {
		event.Type = EventOther
	}
	if event.ID == "" {
		event.ID = s.ids.NewID()
	}
	if event.Color == "" {
		event.Color = EventColor(event.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Events = append(doc.Events, event)
	if err := s.commit(ctx, doc); err != nil {
		return Event{}, err
	}
	return event, nil
}

// DeleteEvent removes an event by id. Unknown id is a benign no-op.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Events[:0]
	removed := false
	for _, e := range doc.Events {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}
	doc.Events = kept
	return s.commit(ctx, doc)
}

// Clear resets to the canonical empty shape and deletes the stored document.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Delete(ctx, storage.KeyStudy); err != nil {
		return fmt.Errorf("clear study document: %w", err)
	}
	s.doc = EmptyDocument()
	return nil
}

// Export produces the full-document dump consumed by the download action.
func (s *Store) Export() map[string]any {
	doc := s.Snapshot()
	return map[string]any{
		"weeklySchedule": doc.WeeklySchedule,
		"notes":          doc.Notes,
		"files":          doc.Files,
		"events":         doc.Events,
		"exportDate":     time.Now().UTC().Format(time.RFC3339),
		"version":        core.Version,
	}
}

// SessionsFor returns the ordered sessions of one weekday.
func (s *Store) SessionsFor(day int) []Session {
	if day < 0 || day > 6 {
		return nil
	}
	doc := s.Snapshot()
	return doc.WeeklySchedule[day]
}

// NotesSorted returns all notes, newest first.
func (s *Store) NotesSorted() []Note {
	doc := s.Snapshot()
	notes := doc.Notes
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Date.After(notes[j].Date)
	})
	return notes
}

// Files returns all file records in upload order.
func (s *Store) Files() []FileRecord {
	return s.Snapshot().Files
}

// EventsOn returns the events falling on one calendar day.
func (s *Store) EventsOn(day core.Date) []Event {
	doc := s.Snapshot()
	var out []Event
	for _, e := range doc.Events {
		if core.DateOf(e.Date.UTC()).Equal(day.Time) {
			out = append(out, e)
		}
	}
	return out
}

// EventsInMonth returns the events of one calendar month.
func (s *Store) EventsInMonth(year, month int) []Event {
	doc := s.Snapshot()
	var out []Event
	for _, e := range doc.Events {
		d := e.Date.UTC()
		if d.Year() == year && int(d.Month()) == month {
			out = append(out, e)
		}
	}
	return out
}

// UpcomingEvents returns events within the next n days, soonest first.
func (s *Store) UpcomingEvents(now time.Time, days int) []Event {
	doc := s.Snapshot()
	limit := now.AddDate(0, 0, days)
	var out []Event
	for _, e := range doc.Events {
		if e.Date.Before(now) || e.Date.After(limit) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
