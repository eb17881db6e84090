package transform

import (
	"encoding/json"
	"testing"

	"github.com/fortuna/gridiron/internal/ingest"
	"github.com/fortuna/gridiron/internal/ingest/nflverse"
	"github.com/fortuna/gridiron/internal/model"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/scoring"
)

func qbRow() nflverse.PlayerWeekRow {
	return nflverse.PlayerWeekRow{
		PlayerID:          "00-0033873",
		PlayerName:        "P.Mahomes",
		PlayerDisplayName: "Patrick Mahomes",
		Position:          "QB",
		TeamAbbr:          "KC",
		Season:            2023,
		Week:              1,
		SeasonType:        "REG",
		OpponentTeam:      "DET",
		FantasyPointsPPR:  model.Num(18.5),
		PassingLine:       model.PassingLine{PassingYards: model.Num(226)},
		// Receiving is not part of the QB allow-list.
		ReceivingLine: model.ReceivingLine{Receptions: model.Num(1)},
	}
}

func kickerRow() nflverse.PlayerWeekRow {
	return nflverse.PlayerWeekRow{
		PlayerID:          "00-0032900",
		PlayerDisplayName: "Harrison Butker",
		Position:          "K",
		RecentTeam:        "KC",
		Season:            2023,
		Week:              1,
		SeasonType:        "REG",
		FantasyPointsPPR:  model.Num(99),
		KickingLine: model.KickingLine{
			FGMade40To49: model.Num(2),
			PATMade:      model.Num(3),
			FGMissed:     model.Num(1),
		},
	}
}

func gamesFixture() []nflverse.GameRow {
	return []nflverse.GameRow{
		{Season: 2023, GameType: "REG", Week: 1, HomeTeam: "KC", HomeScore: model.Num(24), AwayTeam: "DET", AwayScore: model.Num(17)},
		{Season: 2023, GameType: "REG", Week: 2, HomeTeam: "JAX", HomeScore: model.Stat{}, AwayTeam: "KC", AwayScore: model.Stat{}},
		{Season: 2023, GameType: "POST", Week: 19, HomeTeam: "KC", HomeScore: model.Num(26), AwayTeam: "MIA", AwayScore: model.Num(7)},
	}
}

func newEngine(opts Options) *Engine {
	return NewEngine(reconciliation.NewEngine(reconciliation.IDThenName), opts, nil, nil)
}

func TestPointsAllowedPivot(t *testing.T) {
	pa := PointsAllowed(gamesFixture())

	if got := pa[TeamWeek{2023, 1, "KC"}]; got != 17 {
		t.Fatalf("expected home team charged 17, got %v", got)
	}
	if got := pa[TeamWeek{2023, 1, "DET"}]; got != 24 {
		t.Fatalf("expected away team charged 24, got %v", got)
	}
	if _, ok := pa[TeamWeek{2023, 2, "KC"}]; ok {
		t.Fatal("expected unplayed game to be skipped")
	}
	if _, ok := pa[TeamWeek{2023, 19, "KC"}]; ok {
		t.Fatal("expected postseason game to be skipped")
	}
}

func TestBuildDefaultsInjuriesAndScoresKickers(t *testing.T) {
	tables := &ingest.Tables{Season: 2023, Players: []nflverse.PlayerWeekRow{qbRow(), kickerRow()}}

	records, summary, err := newEngine(Options{}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || summary.Players != 2 || summary.Defenses != 0 {
		t.Fatalf("unexpected build result %d records, %+v", len(records), summary)
	}

	qb, ok := records[0].(model.QuarterbackWeek)
	if !ok {
		t.Fatalf("expected QuarterbackWeek, got %T", records[0])
	}
	if qb.ReportStatus != "Healthy" || qb.PracticeStatus != "Full" {
		t.Fatalf("expected Healthy/Full defaults, got %+v", qb.InjuryStatus)
	}
	if qb.FantasyPointsPPR != 18.5 {
		t.Fatalf("expected passthrough points, got %v", qb.FantasyPointsPPR)
	}

	k, ok := records[1].(model.KickerWeek)
	if !ok {
		t.Fatalf("expected KickerWeek, got %T", records[1])
	}
	if k.FantasyPointsPPR != 10 {
		t.Fatalf("expected kicker formula to override passthrough with 10, got %v", k.FantasyPointsPPR)
	}
	if k.Team != "KC" {
		t.Fatalf("expected recent_team fallback, got %q", k.Team)
	}
}

func TestBuildJoinsInjuries(t *testing.T) {
	tables := &ingest.Tables{
		Season:  2023,
		Players: []nflverse.PlayerWeekRow{qbRow(), kickerRow()},
		Injuries: []model.InjuryReport{
			{Season: 2023, Week: 1, Team: "KC", Position: "QB", GSISID: "00-0033873", FullName: "Patrick Mahomes", ReportStatus: "Questionable", PracticeStatus: "Limited"},
			{Season: 2023, Week: 1, Team: "KC", Position: "K", FullName: "Harrison Butker", ReportStatus: ""},
		},
	}

	records, summary, err := newEngine(Options{}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	qb := records[0].(model.QuarterbackWeek)
	if qb.ReportStatus != "Questionable" || qb.PracticeStatus != "Limited" {
		t.Fatalf("unexpected QB injury status %+v", qb.InjuryStatus)
	}
	k := records[1].(model.KickerWeek)
	if k.ReportStatus != "Healthy" || k.PracticeStatus != "Full" {
		t.Fatalf("expected blank statuses on a matched row to default, got %+v", k.InjuryStatus)
	}
	if summary.Injuries.ByID != 1 || summary.Injuries.ByName != 1 {
		t.Fatalf("unexpected join summary %+v", summary.Injuries)
	}
}

func TestBuildSynthesizesDefense(t *testing.T) {
	tables := &ingest.Tables{
		Season: 2023,
		Teams: []nflverse.TeamWeekRow{
			{Season: 2023, Week: 2, Team: "KC", SeasonType: "REG", OpponentTeam: "JAX", DefenseLine: model.DefenseLine{DefSacks: model.Num(2)}},
			{Season: 2023, Week: 1, Team: "KC", SeasonType: "REG", OpponentTeam: "DET", DefenseLine: model.DefenseLine{
				DefSacks:          model.Num(3),
				DefInterceptions:  model.Num(1),
				DefFumblesForced:  model.Num(1),
				FumbleRecoveryOpp: model.Num(1),
				DefTDs:            model.Num(1),
			}},
			{Season: 2023, Week: 1, Team: "DET", SeasonType: "REG", OpponentTeam: "KC"},
		},
		Games: gamesFixture(),
	}

	records, summary, err := newEngine(Options{TeamDefense: true}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Defenses != 3 || len(records) != 3 {
		t.Fatalf("expected 3 defense records, got %d", len(records))
	}

	want := []struct {
		week int
		team string
	}{{1, "DET"}, {1, "KC"}, {2, "KC"}}
	for i, w := range want {
		id := records[i].Identity()
		if id.Week != w.week || id.Team != w.team {
			t.Fatalf("record %d: expected week %d %s, got week %d %s", i, w.week, w.team, id.Week, id.Team)
		}
	}

	kc := records[1].(model.DefenseWeek)
	if kc.PlayerID != "DEF_KC" || kc.PlayerName != "KC DEF" || kc.PlayerDisplayName != "KC DEF" || kc.Position != model.PositionDEF {
		t.Fatalf("unexpected synthetic identity %+v", kc.Base)
	}
	if kc.PointsAllowed != model.Num(17) {
		t.Fatalf("expected 17 points allowed, got %+v", kc.PointsAllowed)
	}
	// 3 + 2 + 2 + 6 + bucket(17)=1; forced fumbles off.
	if kc.FantasyPointsPPR != 14 {
		t.Fatalf("expected 14 points, got %v", kc.FantasyPointsPPR)
	}
	if kc.FantasyPointsPPR != scoring.TeamDefense(kc.DefenseLine, scoring.DefenseOptions{}) {
		t.Fatal("expected record points to follow the defense formula")
	}

	det := records[0].(model.DefenseWeek)
	if det.PointsAllowed != model.Num(24) || det.FantasyPointsPPR != 0 {
		t.Fatalf("expected DET charged 24 for 0 points, got %+v / %v", det.PointsAllowed, det.FantasyPointsPPR)
	}

	unplayed := records[2].(model.DefenseWeek)
	if unplayed.PointsAllowed.Valid || unplayed.FantasyPointsPPR != 2 {
		t.Fatalf("expected missing points_allowed to contribute 0, got %+v / %v", unplayed.PointsAllowed, unplayed.FantasyPointsPPR)
	}
}

func TestBuildOrdersPlayersBeforeDefense(t *testing.T) {
	tables := &ingest.Tables{
		Season:  2023,
		Players: []nflverse.PlayerWeekRow{kickerRow(), qbRow()},
		Teams:   []nflverse.TeamWeekRow{{Season: 2023, Week: 1, Team: "KC", SeasonType: "REG"}},
		Games:   gamesFixture(),
	}

	records, _, err := newEngine(Options{TeamDefense: true, Defense: scoring.DefenseOptions{FumblesForced: true}}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].Identity().Position != model.PositionK || records[1].Identity().Position != model.PositionQB {
		t.Fatal("expected players in source order")
	}
	if records[2].Identity().Position != model.PositionDEF {
		t.Fatal("expected defense records last")
	}
}

func TestBuildSeasonTypeFilter(t *testing.T) {
	post := qbRow()
	post.Week = 19
	post.SeasonType = "POST"
	tables := &ingest.Tables{
		Season:  2023,
		Players: []nflverse.PlayerWeekRow{qbRow(), post},
		Teams: []nflverse.TeamWeekRow{
			{Season: 2023, Week: 1, Team: "KC", SeasonType: "REG"},
			{Season: 2023, Week: 19, Team: "KC", SeasonType: "POST"},
		},
	}

	records, _, err := newEngine(Options{SeasonType: "post", TeamDefense: true}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected only postseason records, got %d", len(records))
	}
	for _, r := range records {
		if r.Identity().SeasonType != "POST" {
			t.Fatalf("unexpected season type %q", r.Identity().SeasonType)
		}
	}
}

func TestBuildBackfillsHeadshots(t *testing.T) {
	row := qbRow()
	row.HeadshotURL = "NA"
	unknown := kickerRow()
	tables := &ingest.Tables{
		Season:  2023,
		Players: []nflverse.PlayerWeekRow{row, unknown},
		Rosters: []nflverse.RosterRow{{GSISID: row.PlayerID, HeadshotURL: "https://img/pm.png"}},
	}

	records, _, err := newEngine(Options{}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := records[0].Identity().HeadshotURL; got == nil || *got != "https://img/pm.png" {
		t.Fatalf("expected roster headshot, got %v", got)
	}
	if records[1].Identity().HeadshotURL != nil {
		t.Fatal("expected nil headshot when nothing is known")
	}
}

func TestBuildUnknownPositionCarriesNoStats(t *testing.T) {
	row := qbRow()
	row.Position = "LS"
	row.FantasyPointsPPR = model.Stat{}

	records, _, err := newEngine(Options{}).Build(&ingest.Tables{Players: []nflverse.PlayerWeekRow{row}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, ok := records[0].(model.OtherWeek)
	if !ok {
		t.Fatalf("expected OtherWeek, got %T", records[0])
	}
	if other.FantasyPointsPPR != 0 {
		t.Fatalf("expected missing passthrough to default to 0, got %v", other.FantasyPointsPPR)
	}
}

func TestBuildEmittedKeysFollowAllowList(t *testing.T) {
	tables := &ingest.Tables{
		Season:  2023,
		Players: []nflverse.PlayerWeekRow{qbRow(), kickerRow()},
		Teams:   []nflverse.TeamWeekRow{{Season: 2023, Week: 1, Team: "KC", SeasonType: "REG"}},
		Games:   gamesFixture(),
	}
	records, _, err := newEngine(Options{TeamDefense: true}).Build(tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, rec := range decoded {
		pos := model.Position(rec["position"].(string))
		allowed := make(map[string]bool)
		for _, f := range model.AllowedFields(pos) {
			allowed[f] = true
		}
		for key := range rec {
			if !allowed[key] {
				t.Fatalf("%s record carries disallowed key %q", pos, key)
			}
		}
	}
	if _, ok := decoded[0]["receptions"]; ok {
		t.Fatal("QB record should not carry receiving stats")
	}
}

func TestBuildRejectsInvalidRows(t *testing.T) {
	row := qbRow()
	row.Week = 0
	if _, _, err := newEngine(Options{}).Build(&ingest.Tables{Players: []nflverse.PlayerWeekRow{row}}); err == nil {
		t.Fatal("expected invalid week to abort the build")
	}
	if _, _, err := newEngine(Options{}).Build(nil); err == nil {
		t.Fatal("expected nil tables to fail")
	}
}
