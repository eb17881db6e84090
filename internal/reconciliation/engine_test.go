package reconciliation

import (
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/model"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"A.J. Brown":         "ajbrown",
		"Amon-Ra St. Brown":  "amonrastbrown",
		"D'Andre Swift":      "dandreswift",
		"Kenneth Walker III": "kennethwalkeriii",
		"  ":                 "",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func player(id, name string) Player {
	return Player{Season: 2023, Week: 1, Team: "PHI", Position: "WR", ID: id, Name: name}
}

func report(id, name, status string, modified time.Time) model.InjuryReport {
	return model.InjuryReport{
		Season: 2023, Week: 1, Team: "PHI", Position: "WR",
		GSISID: id, FullName: name, ReportStatus: status, DateModified: modified,
	}
}

func TestReconcileIDThenName(t *testing.T) {
	now := time.Date(2023, 9, 8, 12, 0, 0, 0, time.UTC)
	players := []Player{
		player("00-1", "A.J. Brown"),
		player("00-2", "DeVonta Smith"),
		player("00-3", "Olamide Zaccheaus"),
	}
	reports := []model.InjuryReport{
		report("00-1", "AJ Brown", "Questionable", now),
		report("", "Devonta Smith", "Doubtful", now),
	}

	engine := NewEngine("")
	matches, _ := engine.Reconcile(players, reports)

	if matches[0].Method != MatchedByID || matches[0].Report.ReportStatus != "Questionable" {
		t.Fatalf("expected id match for A.J. Brown, got %+v", matches[0])
	}
	if matches[1].Method != MatchedByName || matches[1].Report.ReportStatus != "Doubtful" {
		t.Fatalf("expected name match for Smith, got %+v", matches[1])
	}
	if matches[2].Method != Unmatched || matches[2].Report != nil {
		t.Fatalf("expected no match, got %+v", matches[2])
	}

	m := engine.GetMetrics()
	if m.ByID != 1 || m.ByName != 1 || m.Unmatched != 1 || m.TotalReconciliations != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestReconcileIDOnlyNeverGuesses(t *testing.T) {
	players := []Player{player("00-2", "DeVonta Smith")}
	reports := []model.InjuryReport{report("", "DeVonta Smith", "Out", time.Time{})}

	matches, _ := NewEngine(IDOnly).Reconcile(players, reports)
	if matches[0].Method != Unmatched {
		t.Fatalf("expected id strategy to ignore name keys, got %+v", matches[0])
	}
}

func TestReconcileNameOnlyIgnoresIDs(t *testing.T) {
	players := []Player{player("00-1", "A.J. Brown")}
	reports := []model.InjuryReport{report("00-1", "Someone Else", "Out", time.Time{})}

	matches, _ := NewEngine(NameOnly).Reconcile(players, reports)
	if matches[0].Method != Unmatched {
		t.Fatalf("expected name strategy to skip id lookup, got %+v", matches[0])
	}
}

func TestReconcileLatestReportWins(t *testing.T) {
	early := time.Date(2023, 9, 6, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	players := []Player{player("00-1", "A.J. Brown"), player("00-9", "Quez Watkins")}
	reports := []model.InjuryReport{
		report("00-1", "A.J. Brown", "Out", late),
		report("00-1", "A.J. Brown", "Questionable", early),
		report("", "Quez Watkins", "Doubtful", early),
		report("", "Quez Watkins", "Out", late),
	}

	matches, _ := NewEngine(IDThenName).Reconcile(players, reports)
	if matches[0].Report.ReportStatus != "Out" {
		t.Fatalf("expected latest id report, got %q", matches[0].Report.ReportStatus)
	}
	if matches[1].Report.ReportStatus != "Out" {
		t.Fatalf("expected latest name report, got %q", matches[1].Report.ReportStatus)
	}
}

func TestReconcileCollisionsNeverMatchByName(t *testing.T) {
	players := []Player{
		player("00-1", "Mike Williams"),
		player("00-2", "Mike Williams"),
	}
	reports := []model.InjuryReport{report("", "Mike Williams", "Out", time.Time{})}

	engine := NewEngine(IDThenName)
	matches, _ := engine.Reconcile(players, reports)
	for i, m := range matches {
		if m.Method != Unmatched {
			t.Fatalf("player %d: expected collision to block name match, got %+v", i, m)
		}
	}
	if got := engine.GetMetrics().Collisions; got != 1 {
		t.Fatalf("expected 1 collision, got %d", got)
	}
}

func TestReconcileReportSideCollision(t *testing.T) {
	players := []Player{player("", "Josh Allen")}
	reports := []model.InjuryReport{
		report("00-7", "Josh Allen", "Out", time.Time{}),
		report("00-8", "Josh Allen", "Questionable", time.Time{}),
	}

	engine := NewEngine(IDThenName)
	matches, run := engine.Reconcile(players, reports)
	if matches[0].Method != Unmatched {
		t.Fatalf("expected report-side collision to block match, got %+v", matches[0])
	}
	if run.Collisions != 1 || run.Unmatched != 1 {
		t.Fatalf("unexpected run metrics %+v", run)
	}
	if engine.GetMetrics().Collisions != 1 {
		t.Fatal("expected collision to be counted")
	}
}

func TestReconcileIDThenNameRejectsForeignID(t *testing.T) {
	players := []Player{
		{Season: 2023, Week: 1, Team: "LAC", Position: "WR", ID: "00-0000002", Name: "Mike Williams"},
	}
	reports := []model.InjuryReport{{
		Season: 2023, Week: 1, Team: "LAC", Position: "WR",
		GSISID: "00-0000001", FullName: "Mike Williams", ReportStatus: "Out",
	}}

	engine := NewEngine(IDThenName)
	matches, run := engine.Reconcile(players, reports)
	if matches[0].Method != Unmatched || matches[0].Report != nil {
		t.Fatalf("expected report for another gsis id to be rejected, got %+v", matches[0])
	}
	if run.Unmatched != 1 || run.ByName != 0 {
		t.Fatalf("expected the rejection to count as unmatched, got %+v", run)
	}

	matches, _ = NewEngine(NameOnly).Reconcile(players, reports)
	if matches[0].Method != MatchedByName {
		t.Fatalf("expected name strategy to keep matching on the name key, got %+v", matches[0])
	}
}

func TestMetricsAccumulateAcrossCalls(t *testing.T) {
	engine := NewEngine(IDThenName)
	players := []Player{player("00-1", "A.J. Brown")}
	reports := []model.InjuryReport{report("00-1", "A.J. Brown", "Out", time.Time{})}

	engine.Reconcile(players, reports)
	engine.Reconcile(players, nil)

	m := engine.GetMetrics()
	if m.TotalReconciliations != 2 || m.ByID != 1 || m.Unmatched != 1 {
		t.Fatalf("unexpected running totals %+v", m)
	}
	if m.LastReconciliation.IsZero() {
		t.Fatal("expected last reconciliation time to be set")
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != IDThenName {
		t.Fatalf("expected default strategy, got %q (%v)", s, err)
	}
	if s, err := ParseStrategy(" NAME "); err != nil || s != NameOnly {
		t.Fatalf("expected name strategy, got %q (%v)", s, err)
	}
	if _, err := ParseStrategy("fuzzy"); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}
