package ident

import "testing"

func TestUUIDUnique(t *testing.T) {
	issuer := NewUUID()
	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := issuer.NewID()
		if id == "" {
			t.Fatal("empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d issues: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequential(t *testing.T) {
	issuer := NewSequential("tx")
	if got := issuer.NewID(); got != "tx-1" {
		t.Fatalf("first id = %s", got)
	}
	if got := issuer.NewID(); got != "tx-2" {
		t.Fatalf("second id = %s", got)
	}
}
