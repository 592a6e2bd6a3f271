// Package backup snapshots every persisted document into a single restorable
// payload, and manages the small preference documents that live alongside the
// feature data.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"organizador/internal/core"
	"organizador/internal/storage"
)

// Snapshot is the full-state payload written to the backup slot and to
// downloaded backup files. Data maps fully namespaced keys to their raw
// document bodies, so restoring is a byte-faithful write-back.
type Snapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Version   string                     `json:"version"`
	Data      map[string]json.RawMessage `json:"data"`
}

const themeKey = storage.KeyTheme

type Service struct {
	gw storage.Gateway
}

func NewService(gw storage.Gateway) *Service {
	return &Service{gw: gw}
}

// ExportAll collects every stored document except the backup slot itself.
func (s *Service) ExportAll(ctx context.Context, now time.Time) (Snapshot, error) {
	keys, err := s.gw.Keys(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list documents: %w", err)
	}

	snap := Snapshot{
		Timestamp: now.UTC(),
		Version:   core.Version,
		Data:      map[string]json.RawMessage{},
	}
	backupKey := storage.NamespacedKey(s.gw.Namespace(), storage.KeyBackup)
	for _, key := range keys {
		if key == backupKey {
			continue
		}
		raw, found, err := s.gw.GetRaw(ctx, key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read document %s: %w", key, err)
		}
		if !found {
			continue
		}
		snap.Data[key] = raw
	}
	return snap, nil
}

// Create writes a fresh snapshot into the backup slot, replacing the
// previous one.
func (s *Service) Create(ctx context.Context, now time.Time) (Snapshot, error) {
	snap, err := s.ExportAll(ctx, now)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.gw.Put(ctx, storage.KeyBackup, snap); err != nil {
		return Snapshot{}, fmt.Errorf("store backup: %w", err)
	}
	slog.InfoContext(ctx, "backup created", "documents", len(snap.Data))
	return snap, nil
}

// Latest returns the stored backup snapshot, if any.
func (s *Service) Latest(ctx context.Context) (Snapshot, bool, error) {
	var snap Snapshot
	found, err := s.gw.Get(ctx, storage.KeyBackup, &snap)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read backup: %w", err)
	}
	return snap, found, nil
}

// Restore writes a snapshot's documents back into storage. Each document is
// written under its original key; callers reload their stores afterwards.
func (s *Service) Restore(ctx context.Context, snap Snapshot) error {
	for key, raw := range snap.Data {
		name, ok := storage.SplitKey(s.gw.Namespace(), key)
		if !ok {
			slog.WarnContext(ctx, "skipping foreign backup entry", "key", key)
			continue
		}
		if err := s.gw.Put(ctx, name, raw); err != nil {
			return fmt.Errorf("restore document %s: %w", key, err)
		}
	}
	slog.InfoContext(ctx, "backup restored", "documents", len(snap.Data))
	return nil
}
