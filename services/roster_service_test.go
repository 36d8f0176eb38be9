package services

import (
	"errors"
	"testing"

	"github.com/sahilchouksey/attendance-api/model"
)

func TestRosterTiersFullScope(t *testing.T) {
	dept := uint(2)
	tiers := rosterTiers(RosterScope{DepartmentID: &dept, Semester: 3, Section: "A", Batch: "B1"})

	if len(tiers) != 3 {
		t.Fatalf("got %d tiers, want 3", len(tiers))
	}
	if tiers[0].Tier != TierStrict || tiers[1].Tier != TierRelaxed || tiers[2].Tier != TierWide {
		t.Fatalf("tier order = [%s, %s, %s]", tiers[0].Tier, tiers[1].Tier, tiers[2].Tier)
	}
	if tiers[1].Section != "" || tiers[1].Batch != "" {
		t.Error("relaxed tier must drop section and batch")
	}
	if tiers[2].Semester != 0 {
		t.Error("wide tier must drop semester")
	}
}

func TestRosterTiersSkipsRedundantRelaxed(t *testing.T) {
	dept := uint(2)
	// no section or batch: relaxed would repeat strict, so it is skipped
	tiers := rosterTiers(RosterScope{DepartmentID: &dept, Semester: 3})

	if len(tiers) != 2 {
		t.Fatalf("got %d tiers, want 2", len(tiers))
	}
	if tiers[0].Tier != TierStrict || tiers[1].Tier != TierWide {
		t.Fatalf("tier order = [%s, %s]", tiers[0].Tier, tiers[1].Tier)
	}
}

func TestRosterTiersWideRequiresDepartment(t *testing.T) {
	tiers := rosterTiers(RosterScope{Semester: 3, Section: "A"})

	for _, tier := range tiers {
		if tier.Tier == TierWide {
			t.Fatal("wide tier offered without a department")
		}
	}
}

func TestResolveWithFallsThroughToRelaxed(t *testing.T) {
	dept := uint(2)
	scope := RosterScope{DepartmentID: &dept, Semester: 3, Section: "Z"}

	find := func(f rosterFilter) ([]model.Student, error) {
		if f.Tier == TierStrict {
			return nil, nil // nobody in section Z
		}
		return []model.Student{{ID: 1}, {ID: 2}}, nil
	}

	result, err := resolveWith(find, scope)
	if err != nil {
		t.Fatal(err)
	}
	if result.Tier != TierRelaxed {
		t.Fatalf("tier = %s, want %s", result.Tier, TierRelaxed)
	}
	if len(result.Students) != 2 {
		t.Fatalf("got %d students, want 2", len(result.Students))
	}
	if result.InsufficientScope {
		t.Error("InsufficientScope set on a resolved roster")
	}
}

func TestResolveWithStopsAtFirstMatch(t *testing.T) {
	dept := uint(2)
	scope := RosterScope{DepartmentID: &dept, Semester: 3, Section: "A"}

	calls := 0
	find := func(f rosterFilter) ([]model.Student, error) {
		calls++
		return []model.Student{{ID: 1}}, nil
	}

	result, err := resolveWith(find, scope)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("finder called %d times, want 1", calls)
	}
	if result.Tier != TierStrict {
		t.Fatalf("tier = %s, want %s", result.Tier, TierStrict)
	}
}

func TestResolveWithInsufficientScope(t *testing.T) {
	// No department: the wide tier is unavailable, and when the narrower
	// tiers come back empty the result flags missing scoping data.
	scope := RosterScope{Semester: 3, Section: "A"}

	find := func(f rosterFilter) ([]model.Student, error) { return nil, nil }

	result, err := resolveWith(find, scope)
	if err != nil {
		t.Fatal(err)
	}
	if result.Tier != TierNone {
		t.Fatalf("tier = %s, want %s", result.Tier, TierNone)
	}
	if !result.InsufficientScope {
		t.Error("InsufficientScope not set")
	}
	if result.Students == nil {
		t.Error("students slice is nil, want empty")
	}
}

func TestResolveWithEmptyButScoped(t *testing.T) {
	dept := uint(2)
	scope := RosterScope{DepartmentID: &dept, Semester: 3}

	find := func(f rosterFilter) ([]model.Student, error) { return nil, nil }

	result, err := resolveWith(find, scope)
	if err != nil {
		t.Fatal(err)
	}
	if result.InsufficientScope {
		t.Error("empty roster with a known department is a real empty class, not missing scope")
	}
}

func TestResolveWithPropagatesErrors(t *testing.T) {
	dept := uint(2)
	wantErr := errors.New("db down")
	find := func(f rosterFilter) ([]model.Student, error) { return nil, wantErr }

	_, err := resolveWith(find, RosterScope{DepartmentID: &dept, Semester: 3})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
