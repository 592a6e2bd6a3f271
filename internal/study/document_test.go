package study

import (
	"encoding/json"
	"reflect"
	"testing"

	"organizador/internal/ident"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	ids := ident.NewSequential("s")
	doc := Document{}
	doc.Normalize(ids)

	if len(doc.WeeklySchedule) != 7 {
		t.Fatalf("weekly schedule has %d days, want 7", len(doc.WeeklySchedule))
	}
	for day := 0; day < 7; day++ {
		if doc.WeeklySchedule[day] == nil {
			t.Fatalf("day %d is nil", day)
		}
	}
	if doc.Notes == nil || doc.Files == nil || doc.Events == nil {
		t.Fatal("collections must be non-nil after normalize")
	}
}

func TestNormalizeAssignsMissingIDs(t *testing.T) {
	ids := ident.NewSequential("s")
	doc := Document{
		WeeklySchedule: WeekSchedule{
			3: {{Subject: "math"}, {ID: "keep-me", Subject: "physics"}},
		},
		Notes:  []Note{{Content: "a"}},
		Events: []Event{{ID: "evt", Title: "exam"}},
	}
	doc.Normalize(ids)

	if doc.WeeklySchedule[3][0].ID == "" {
		t.Fatal("session id not assigned")
	}
	if doc.WeeklySchedule[3][1].ID != "keep-me" {
		t.Fatalf("existing id reassigned to %s", doc.WeeklySchedule[3][1].ID)
	}
	if doc.Notes[0].ID == "" {
		t.Fatal("note id not assigned")
	}
	if doc.Events[0].ID != "evt" {
		t.Fatal("existing event id reassigned")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	ids := ident.NewSequential("s")
	doc := Document{
		WeeklySchedule: WeekSchedule{1: {{Subject: "math"}}},
		Notes:          []Note{{Content: "n"}},
	}
	doc.Normalize(ids)

	before, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc.Normalize(ids)
	after, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatalf("normalize not idempotent:\n%s\n%s", before, after)
	}
}

func TestNormalizeDropsOutOfRangeDays(t *testing.T) {
	ids := ident.NewSequential("s")
	doc := Document{WeeklySchedule: WeekSchedule{9: {{ID: "x", Subject: "ghost"}}}}
	doc.Normalize(ids)

	if _, ok := doc.WeeklySchedule[9]; ok {
		t.Fatal("day 9 survived normalize")
	}
	if len(doc.WeeklySchedule) != 7 {
		t.Fatalf("schedule has %d keys", len(doc.WeeklySchedule))
	}
}

func TestDocumentPreservesUnknownKeys(t *testing.T) {
	raw := `{"notes":[],"futureFeature":{"enabled":true},"weeklySchedule":{}}`
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatal(err)
	}
	doc.Normalize(ident.NewSequential("s"))

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if string(m["futureFeature"]) != `{"enabled":true}` {
		t.Fatalf("unknown key lost: %s", out)
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	ids := ident.NewSequential("s")
	doc := Document{
		WeeklySchedule: WeekSchedule{2: {{Subject: "history", Time: "09:00", Duration: 1.5}}},
		Notes:          []Note{{Content: "revise", Tags: []string{"exam"}}},
	}
	doc.Normalize(ids)

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	back.Normalize(ids)

	if !reflect.DeepEqual(doc.WeeklySchedule, back.WeeklySchedule) {
		t.Fatalf("schedule round-trip mismatch:\n%+v\n%+v", doc.WeeklySchedule, back.WeeklySchedule)
	}
	if len(back.Notes) != 1 || back.Notes[0].Content != "revise" {
		t.Fatalf("notes round-trip mismatch: %+v", back.Notes)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := EmptyDocument()
	doc.WeeklySchedule[0] = []Session{{ID: "a", Subject: "math"}}
	doc.Notes = []Note{{ID: "n", Content: "x", Tags: []string{"t"}}}

	clone := doc.Clone()
	clone.WeeklySchedule[0][0].Subject = "changed"
	clone.Notes[0].Tags[0] = "changed"

	if doc.WeeklySchedule[0][0].Subject != "math" {
		t.Fatal("clone shares session backing array")
	}
	if doc.Notes[0].Tags[0] != "t" {
		t.Fatal("clone shares tag backing array")
	}
}
