package backup

import (
	"context"
	"testing"
	"time"

	"organizador/internal/core"
	"organizador/internal/finance"
	"organizador/internal/ident"
	"organizador/internal/storage"
	"organizador/internal/storage/memory"
	"organizador/internal/study"
)

func seededGateway(t *testing.T) *memory.Gateway {
	t.Helper()
	return seededGatewayNS(t, storage.DefaultNamespace)
}

func seededGatewayNS(t *testing.T, namespace string) *memory.Gateway {
	t.Helper()
	ctx := context.Background()
	gw := memory.NewNS(namespace)

	st := study.NewStore(gw, ident.NewSequential("st"))
	if err := st.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddNote(ctx, "remember this", nil); err != nil {
		t.Fatal(err)
	}

	fin := finance.NewStore(gw, ident.NewSequential("fin"))
	if err := fin.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := fin.AddTransaction(ctx, finance.NewTransaction{
		Type: finance.Expense, Description: "market", Amount: core.MoneyFromFloat(42),
		Date: core.NewDate(2024, 3, 5), Category: "food",
	}); err != nil {
		t.Fatal(err)
	}
	return gw
}

func TestCreateSnapshotsAllDocuments(t *testing.T) {
	gw := seededGateway(t)
	svc := NewService(gw)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	snap, err := svc.Create(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Timestamp.Equal(now) || snap.Version != core.Version {
		t.Fatalf("metadata wrong: %+v", snap)
	}
	for _, name := range []string{storage.KeyStudy, storage.KeyFinance} {
		if _, ok := snap.Data[storage.NamespacedKey(gw.Namespace(), name)]; !ok {
			t.Fatalf("snapshot missing %s: %v", name, snap.Data)
		}
	}

	got, found, err := svc.Latest(ctx)
	if err != nil || !found {
		t.Fatalf("latest: found=%v err=%v", found, err)
	}
	if len(got.Data) != len(snap.Data) {
		t.Fatalf("stored snapshot differs: %d vs %d documents", len(got.Data), len(snap.Data))
	}
}

func TestSnapshotExcludesBackupSlot(t *testing.T) {
	gw := seededGateway(t)
	svc := NewService(gw)
	ctx := context.Background()

	if _, err := svc.Create(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	// a second snapshot must not nest the first one
	snap, err := svc.Create(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Data[storage.NamespacedKey(gw.Namespace(), storage.KeyBackup)]; ok {
		t.Fatal("snapshot contains the backup slot itself")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	gw := seededGateway(t)
	svc := NewService(gw)
	ctx := context.Background()

	snap, err := svc.Create(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	fresh := memory.New()
	if err := NewService(fresh).Restore(ctx, snap); err != nil {
		t.Fatal(err)
	}

	fin := finance.NewStore(fresh, ident.NewSequential("fin2"))
	if err := fin.Load(ctx); err != nil {
		t.Fatal(err)
	}
	txs := fin.Transactions(finance.Filter{})
	if len(txs) != 1 || txs[0].Description != "market" {
		t.Fatalf("restore lost finance data: %+v", txs)
	}
}

func TestBackupRoundTripCustomNamespace(t *testing.T) {
	gw := seededGatewayNS(t, "tenantA")
	svc := NewService(gw)
	ctx := context.Background()

	if _, err := svc.Create(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.Create(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Data[storage.NamespacedKey("tenantA", storage.KeyBackup)]; ok {
		t.Fatal("snapshot contains the backup slot itself")
	}
	if len(snap.Data) != 2 {
		t.Fatalf("snapshot has %d documents, want 2: %v", len(snap.Data), snap.Data)
	}

	fresh := memory.NewNS("tenantA")
	if err := NewService(fresh).Restore(ctx, snap); err != nil {
		t.Fatal(err)
	}

	fin := finance.NewStore(fresh, ident.NewSequential("fin2"))
	if err := fin.Load(ctx); err != nil {
		t.Fatal(err)
	}
	txs := fin.Transactions(finance.Filter{})
	if len(txs) != 1 || txs[0].Description != "market" {
		t.Fatalf("restore lost finance data: %+v", txs)
	}
}

func TestThemeDefaultsAndToggle(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	theme, err := svc.Theme(ctx)
	if err != nil || theme != ThemeLight {
		t.Fatalf("default theme = %q err=%v, want light", theme, err)
	}

	next, err := svc.ToggleTheme(ctx)
	if err != nil || next != ThemeDark {
		t.Fatalf("toggle = %q err=%v, want dark", next, err)
	}
	theme, err = svc.Theme(ctx)
	if err != nil || theme != ThemeDark {
		t.Fatalf("stored theme = %q err=%v", theme, err)
	}

	if err := svc.SetTheme(ctx, "sepia"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}
