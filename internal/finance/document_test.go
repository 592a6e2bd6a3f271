package finance

import (
	"bytes"
	"encoding/json"
	"testing"

	"organizador/internal/core"
	"organizador/internal/ident"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	var doc Document
	doc.Normalize(ident.NewSequential("fin"))

	if doc.Transactions == nil || doc.Bills == nil || doc.Goals == nil {
		t.Fatalf("normalize left nil collections: %+v", doc)
	}
}

func TestNormalizeAssignsMissingIDsOnly(t *testing.T) {
	doc := Document{
		Transactions: []Transaction{{ID: "keep-me"}, {}},
		Goals:        []Goal{{Title: "car"}},
	}
	doc.Normalize(ident.NewSequential("fin"))

	if got := doc.Transactions[0].ID; got != "keep-me" {
		t.Fatalf("existing id reassigned to %q", got)
	}
	if doc.Transactions[1].ID == "" || doc.Goals[0].ID == "" {
		t.Fatalf("missing ids not assigned: %+v", doc)
	}
}

func TestNormalizeClampsGoalProgress(t *testing.T) {
	doc := Document{Goals: []Goal{
		{ID: "a", Target: core.MoneyFromFloat(100), Current: core.MoneyFromFloat(150)},
		{ID: "b", Target: core.MoneyFromFloat(100), Current: core.MoneyFromFloat(-5)},
		{ID: "c", Target: core.MoneyFromFloat(100), Current: core.MoneyFromFloat(40)},
	}}
	doc.Normalize(ident.NewSequential("fin"))

	for _, tc := range []struct {
		id   string
		want float64
	}{
		{"a", 100}, {"b", 0}, {"c", 40},
	} {
		var got core.Money
		for _, g := range doc.Goals {
			if g.ID == tc.id {
				got = g.Current
			}
		}
		if got.Float() != tc.want {
			t.Errorf("goal %s: current = %v, want %v", tc.id, got.Float(), tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	doc := Document{
		Transactions: []Transaction{{Description: "coffee"}},
		Goals:        []Goal{{Target: core.MoneyFromFloat(50), Current: core.MoneyFromFloat(99)}},
	}
	ids := ident.NewSequential("fin")
	doc.Normalize(ids)

	first, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc.Normalize(ids)
	second, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("second normalize changed the document:\n%s\n%s", first, second)
	}
}

func TestDocumentPreservesUnknownKeys(t *testing.T) {
	in := []byte(`{"transactions":[],"budgetPlan":{"march":300},"bills":[],"goals":[]}`)

	var doc Document
	if err := json.Unmarshal(in, &doc); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if string(m["budgetPlan"]) != `{"march":300}` {
		t.Fatalf("unknown key lost or altered: %s", m["budgetPlan"])
	}
}

func TestDocumentToleratesWrongTypedCollections(t *testing.T) {
	in := []byte(`{"transactions":"oops","bills":[],"goals":[]}`)

	var doc Document
	if err := json.Unmarshal(in, &doc); err != nil {
		t.Fatal(err)
	}
	doc.Normalize(ident.NewSequential("fin"))
	if len(doc.Transactions) != 0 {
		t.Fatalf("expected empty transactions, got %+v", doc.Transactions)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := EmptyDocument()
	doc.Goals = []Goal{{ID: "g1", Title: "trip", Target: core.MoneyFromFloat(100)}}

	cp := doc.Clone()
	cp.Goals[0].Title = "changed"
	if doc.Goals[0].Title != "trip" {
		t.Fatal("clone shares goal backing array with original")
	}
}
