package model

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestStatUnmarshalCSVTreatsBlankAndNAAsMissing(t *testing.T) {
	for _, raw := range []string{"", "NA", " na ", "NaN"} {
		var s Stat
		if err := s.UnmarshalCSV(raw); err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if s.Valid {
			t.Fatalf("expected %q to decode as missing, got %+v", raw, s)
		}
	}

	var s Stat
	if err := s.UnmarshalCSV("12.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Valid || s.Value != 12.5 {
		t.Fatalf("expected 12.5, got %+v", s)
	}

	if err := s.UnmarshalCSV("abc"); err == nil {
		t.Fatal("expected parse error for non-numeric cell")
	}
}

func TestStatMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Stat `json:"a"`
		B Stat `json:"b"`
	}{A: Num(3), B: Stat{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":3,"b":null}` {
		t.Fatalf("unexpected json %s", out)
	}

	var back struct {
		A Stat `json:"a"`
		B Stat `json:"b"`
	}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.A != Num(3) || back.B.Valid {
		t.Fatalf("unexpected round trip %+v", back)
	}
}

func TestStatFloatDefaultsToZero(t *testing.T) {
	if got := (Stat{}).Float(); got != 0 {
		t.Fatalf("expected 0 for missing stat, got %v", got)
	}
	if got := Num(4).Float(); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestParsePosition(t *testing.T) {
	if got := ParsePosition(" wr "); got != PositionWR {
		t.Fatalf("expected WR, got %q", got)
	}
}

func TestVariantKeysMatchAllowedFields(t *testing.T) {
	cases := []struct {
		pos    Position
		record Record
	}{
		{PositionQB, QuarterbackWeek{Base: Base{Position: PositionQB}}},
		{PositionRB, RunningBackWeek{Base: Base{Position: PositionRB}}},
		{PositionWR, ReceiverWeek{Base: Base{Position: PositionWR}}},
		{PositionTE, ReceiverWeek{Base: Base{Position: PositionTE}}},
		{PositionK, KickerWeek{Base: Base{Position: PositionK}}},
		{PositionDEF, DefenseWeek{Base: Base{Position: PositionDEF}}},
		{Position("LS"), OtherWeek{Base: Base{Position: "LS"}}},
	}

	for _, c := range cases {
		data, err := json.Marshal(c.record)
		if err != nil {
			t.Fatalf("%s: marshal: %v", c.pos, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("%s: unmarshal: %v", c.pos, err)
		}

		got := keys(decoded)
		want := append([]string(nil), AllowedFields(c.pos)...)
		sort.Strings(want)

		if len(got) != len(want) {
			t.Fatalf("%s: expected keys %v, got %v", c.pos, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: expected keys %v, got %v", c.pos, want, got)
			}
		}
	}
}

func TestAllowedFieldsExcludeInjuryForDefense(t *testing.T) {
	for _, f := range AllowedFields(PositionDEF) {
		if f == "report_status" || f == "practice_status" {
			t.Fatalf("defense records should not carry %s", f)
		}
	}
	if len(StatFields("XX")) != 0 {
		t.Fatal("unknown positions should have an empty allow-list")
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestStatMarshalCSV(t *testing.T) {
	if got, _ := (Stat{}).MarshalCSV(); got != "NA" {
		t.Fatalf("expected NA, got %q", got)
	}
	if got, _ := Num(0.25).MarshalCSV(); got != "0.25" {
		t.Fatalf("expected 0.25, got %q", got)
	}
}
