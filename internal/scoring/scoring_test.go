package scoring

import (
	"testing"

	"github.com/fortuna/gridiron/internal/model"
)

func TestKickerScoresDistanceBuckets(t *testing.T) {
	k := model.KickingLine{
		FGMade40To49: model.Num(2),
		PATMade:      model.Num(3),
		FGMissed:     model.Num(1),
	}
	if got := Kicker(k); got != 10 {
		t.Fatalf("expected 10 points, got %v", got)
	}

	k = model.KickingLine{
		FGMade0To19:  model.Num(1),
		FGMade20To29: model.Num(1),
		FGMade30To39: model.Num(1),
		FGMade50To59: model.Num(1),
		FGMade60Plus: model.Num(1),
		PATMissed:    model.Num(2),
	}
	if got := Kicker(k); got != 17 {
		t.Fatalf("expected 17 points, got %v", got)
	}
}

func TestKickerTreatsMissingAsZero(t *testing.T) {
	if got := Kicker(model.KickingLine{}); got != 0 {
		t.Fatalf("expected 0 for an empty line, got %v", got)
	}
}

func TestPointsAllowedBucketBoundaries(t *testing.T) {
	cases := map[float64]float64{
		0:  10,
		1:  7,
		6:  7,
		7:  4,
		13: 4,
		14: 1,
		20: 1,
		21: 0,
		27: 0,
		28: -1,
		34: -1,
		35: -4,
		59: -4,
	}
	for pa, want := range cases {
		if got := PointsAllowedBucket(pa); got != want {
			t.Errorf("PointsAllowedBucket(%v) = %v, want %v", pa, got, want)
		}
	}
}

func TestTeamDefense(t *testing.T) {
	d := model.DefenseLine{
		DefSacks:          model.Num(3),
		DefInterceptions:  model.Num(1),
		DefFumblesForced:  model.Num(2),
		FumbleRecoveryOpp: model.Num(1),
		DefTDs:            model.Num(1),
		SpecialTeamsTDs:   model.Num(0),
		DefSafeties:       model.Num(0),
		PointsAllowed:     model.Num(17),
	}

	// 3 + 2 + 2 + 6 + 1
	if got := TeamDefense(d, DefenseOptions{}); got != 14 {
		t.Fatalf("expected 14, got %v", got)
	}
	if got := TeamDefense(d, DefenseOptions{FumblesForced: true}); got != 16 {
		t.Fatalf("expected 16 with fumbles forced, got %v", got)
	}
}

func TestTeamDefenseMissingPointsAllowed(t *testing.T) {
	d := model.DefenseLine{DefSacks: model.Num(2), DefSafeties: model.Num(1)}
	if got := TeamDefense(d, DefenseOptions{}); got != 4 {
		t.Fatalf("expected 4 without a bucket, got %v", got)
	}

	d.PointsAllowed = model.Num(0)
	if got := TeamDefense(d, DefenseOptions{}); got != 14 {
		t.Fatalf("expected shutout bonus, got %v", got)
	}
}
