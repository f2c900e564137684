package core

import "testing"

func TestIncomesOnNewestFirst(t *testing.T) {
	got := sampleSnapshot().IncomesOn("2026-09-01")
	if len(got) != 2 || got[0].ID != "i2" || got[1].ID != "i1" {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(sampleSnapshot().IncomesOn("2026-01-01")) != 0 {
		t.Fatalf("expected no incomes")
	}
}

func TestEntriesOn(t *testing.T) {
	entries := sampleSnapshot().EntriesOn("2026-09-01")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantKinds := []EntryKind{EntryIncome, EntryExpense, EntryIncome}
	var net int64
	for i, e := range entries {
		if e.Kind != wantKinds[i] {
			t.Fatalf("entry %d kind %s, want %s", i, e.Kind, wantKinds[i])
		}
		net += e.Signed()
	}
	if net != Daily(sampleSnapshot(), "2026-09-01").NetProfit {
		t.Fatalf("signed entries sum to %d", net)
	}
}

func TestSnapshotLookups(t *testing.T) {
	s := sampleSnapshot()
	s.MonthlyGoals = []MonthlyGoal{{Month: "2026-09", TargetAmount: 10}}

	if _, ok := s.Goal("2026-10"); ok {
		t.Fatalf("unexpected goal for 2026-10")
	}
	if g, ok := s.Goal("2026-09"); !ok || g.TargetAmount != 10 {
		t.Fatalf("goal lookup failed")
	}
	if d, ok := s.DrivingLogOn("2026-09-15"); !ok || d.TripCount != 22 {
		t.Fatalf("driving log lookup failed")
	}
}

func TestNormalize(t *testing.T) {
	s := Snapshot{}.Normalize()
	if s.Incomes == nil || s.Expenses == nil || s.DrivingLogs == nil || s.MonthlyGoals == nil || s.DaysOff == nil {
		t.Fatalf("normalize left nil collections: %+v", s)
	}
	if s.Version != DataVersion {
		t.Fatalf("version = %q", s.Version)
	}
}

func TestCanonical(t *testing.T) {
	s := Snapshot{
		Incomes:      []Income{{ID: "a", Amount: 1}, {ID: "b", Amount: 2}, {ID: "a", Amount: 3}},
		DrivingLogs:  []DrivingLog{{ID: "d1", Date: "2026-09-01", TripCount: 5}, {ID: "d2", Date: "2026-09-01", TripCount: 9}},
		MonthlyGoals: []MonthlyGoal{{Month: "2026-09", TargetAmount: 100}, {Month: "2026-09", TargetAmount: 200}},
		DaysOff:      []string{"2026-09-07", "2026-09-14", "2026-09-07"},
	}.Canonical()

	if len(s.Incomes) != 2 || s.Incomes[0].ID != "a" || s.Incomes[0].Amount != 3 {
		t.Fatalf("incomes not deduplicated in place: %+v", s.Incomes)
	}
	if len(s.DrivingLogs) != 1 || s.DrivingLogs[0].TripCount != 9 {
		t.Fatalf("driving logs: %+v", s.DrivingLogs)
	}
	if len(s.MonthlyGoals) != 1 || s.MonthlyGoals[0].TargetAmount != 200 {
		t.Fatalf("goals: %+v", s.MonthlyGoals)
	}
	if len(s.DaysOff) != 2 {
		t.Fatalf("days off: %v", s.DaysOff)
	}
	if s.Expenses == nil || s.Version != DataVersion {
		t.Fatalf("canonical snapshot should be normalized")
	}
}
