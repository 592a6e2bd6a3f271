package services

import (
	"testing"

	"organizador/internal/core"
	"organizador/internal/finance"
)

func TestRolloverStrategies(t *testing.T) {
	cases := []struct {
		name string
		rec  finance.Recurrence
		due  string
		want string
	}{
		{"weekly", finance.Weekly, "2024-03-15", "2024-03-22"},
		{"weekly across month", finance.Weekly, "2024-03-28", "2024-04-04"},
		{"monthly", finance.Monthly, "2024-03-15", "2024-04-15"},
		{"monthly clamps short month", finance.Monthly, "2024-01-31", "2024-02-29"},
		{"monthly clamps non-leap", finance.Monthly, "2023-01-31", "2023-02-28"},
		{"monthly across year", finance.Monthly, "2024-12-10", "2025-01-10"},
		{"yearly", finance.Yearly, "2024-03-15", "2025-03-15"},
		{"yearly leap day", finance.Yearly, "2024-02-29", "2025-02-28"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			strategy, err := GetRolloverStrategy(tc.rec)
			if err != nil {
				t.Fatal(err)
			}
			due, err := core.ParseDate(tc.due)
			if err != nil {
				t.Fatal(err)
			}
			if got := strategy.Next(due).Format("2006-01-02"); got != tc.want {
				t.Fatalf("next = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestOnceHasNoRollover(t *testing.T) {
	if _, err := GetRolloverStrategy(finance.Once); err == nil {
		t.Fatal("expected error for one-shot bills")
	}
}
