package http

import (
	"net/http"
	"strconv"

	"organizador/internal/core"
	applog "organizador/internal/log"
	"organizador/internal/study"
)

func (s *Server) handleSchedule(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.study.Snapshot().WeeklySchedule)
}

func (s *Server) handleScheduleDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0..6")
		return
	}
	writeJSON(w, http.StatusOK, s.study.SessionsFor(day))
}

type sessionRequest struct {
	Subject  string        `json:"subject"`
	Time     string        `json:"time"`
	Duration float64       `json:"duration"`
	Priority core.Priority `json:"priority"`
}

func (s *Server) handleAddSession(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "day must be 0..6")
		return
	}
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.study.AddSession(r.Context(), day, study.Session{
		Subject:  req.Subject,
		Time:     req.Time,
		Duration: req.Duration,
		Priority: req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "session added",
		applog.FieldComponent, applog.ComponentStudy,
		applog.FieldRecordID, session.ID)
	writeJSON(w, http.StatusCreated, session)
}

type sessionPatchRequest struct {
	Subject  *string        `json:"subject"`
	Time     *string        `json:"time"`
	Duration *float64       `json:"duration"`
	Priority *core.Priority `json:"priority"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, found, err := s.study.UpdateSession(r.Context(), r.PathValue("id"), study.SessionPatch{
		Subject:  req.Subject,
		Time:     req.Time,
		Duration: req.Duration,
		Priority: req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	if err := s.study.RemoveSession(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.study.NotesSorted())
}

type noteRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := s.study.AddNote(r.Context(), req.Content, req.Tags)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.study.DeleteNote(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.study.Files())
}

type fileRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (s *Server) handleAddFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	file, err := s.study.AddFile(r.Context(), req.Name, req.Size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.study.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEvents serves three views of the calendar: a single day
// (?date=2006-01-02), a month grid (?year=&month=), or the upcoming window
// (?upcoming=days). Without query parameters it returns every event.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("date"); raw != "" {
		day, err := core.ParseDate(raw)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.study.EventsOn(day))
		return
	}
	if q.Get("year") != "" || q.Get("month") != "" {
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		month, err := strconv.Atoi(q.Get("month"))
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		writeJSON(w, http.StatusOK, s.study.EventsInMonth(year, month))
		return
	}
	if raw := q.Get("upcoming"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			writeError(w, http.StatusBadRequest, "invalid upcoming window")
			return
		}
		writeJSON(w, http.StatusOK, s.study.UpcomingEvents(s.now(), days))
		return
	}
	writeJSON(w, http.StatusOK, s.study.Snapshot().Events)
}

type eventRequest struct {
	Title       string          `json:"title"`
	Date        core.Date       `json:"date"`
	Type        study.EventType `json:"type"`
	Time        *string         `json:"time"`
	Description *string         `json:"description"`
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := s.study.AddEvent(r.Context(), study.Event{
		Title:       req.Title,
		Date:        req.Date.Time,
		Type:        req.Type,
		Time:        req.Time,
		Description: req.Description,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.study.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStudyExport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.study.Export())
}

func (s *Server) handleStudyClear(w http.ResponseWriter, r *http.Request) {
	if err := s.study.Clear(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "study data cleared",
		applog.FieldComponent, applog.ComponentStudy)
	w.WriteHeader(http.StatusNoContent)
}
