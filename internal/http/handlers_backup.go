package http

import (
	"net/http"

	"organizador/internal/backup"
	applog "organizador/internal/log"
)

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backups.ExportAll(r.Context(), s.now())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backups.Create(r.Context(), s.now())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "backup created",
		applog.FieldComponent, applog.ComponentBackup,
		"documents", len(snap.Data))
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleLatestBackup(w http.ResponseWriter, r *http.Request) {
	snap, found, err := s.backups.Latest(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "backup")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleRestoreBackup writes the snapshot's documents back to storage, then
// reloads both stores so memory reflects the restored state.
func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	var snap backup.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.backups.Restore(r.Context(), snap); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.study.Load(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.finance.Load(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	s.logger.InfoContext(r.Context(), "backup restored",
		applog.FieldComponent, applog.ComponentBackup,
		"documents", len(snap.Data))
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.backups.Theme(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.backups.SetTheme(r.Context(), req.Theme); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.backups.ToggleTheme(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}
