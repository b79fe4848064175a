package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "40", want: 40},
		{raw: " 12.5 ", want: 12.5},
		{raw: "1e2", want: 100},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseAmount("amount", tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseAmount(%q): expected error", tc.raw)
			}
			if !IsValidation(err) {
				t.Fatalf("ParseAmount(%q): expected validation error, got %T", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestValidateAmountRejectsInfinity(t *testing.T) {
	if err := ValidateAmount("goal", math.Inf(1)); err == nil {
		t.Fatal("expected error for +Inf")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Invalid("name", "is required")
	if err.Error() != "name: is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCloneDetachesMembers(t *testing.T) {
	team := Team{ID: 1, Members: []Contribution{{Name: "Bob", Amount: 40}}}
	clone := team.Clone()
	clone.Members[0].Amount = 99
	if team.Members[0].Amount != 40 {
		t.Fatalf("clone shares member storage")
	}
}

func TestMarshalSnapshotIncludesMembers(t *testing.T) {
	payload, err := MarshalSnapshot(Team{ID: 3, Name: "Alpha", Goal: 100})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg["name"] != "Alpha" || msg["totalContributions"].(float64) != 0 || msg["progress"].(float64) != 0 {
		t.Fatalf("unexpected payload %s", payload)
	}
	members, ok := msg["members"].([]any)
	if !ok || len(members) != 0 {
		t.Fatalf("expected empty members array, got %v", msg["members"])
	}
}

func TestMarshalSnapshotReportsProgress(t *testing.T) {
	payload, err := MarshalSnapshot(Team{ID: 3, Name: "Alpha", Goal: 200, TotalContributions: 50})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var msg struct {
		Progress float64 `json:"progress"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Progress != 0.25 {
		t.Fatalf("unexpected progress in %s", payload)
	}
}

func TestProgress(t *testing.T) {
	team := Team{Goal: 100, TotalContributions: 110}
	if team.Progress() != 1.1 {
		t.Fatalf("unexpected progress %v", team.Progress())
	}
	if (Team{}).Progress() != 0 {
		t.Fatal("expected zero progress without goal")
	}
	huge := Team{Goal: 0.5, TotalContributions: 1.7e308}
	if p := huge.Progress(); math.IsInf(p, 0) {
		t.Fatalf("progress overflowed to %v", p)
	}
	if _, err := MarshalSnapshot(huge); err != nil {
		t.Fatalf("marshal near-limit team: %v", err)
	}
}
