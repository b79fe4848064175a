package leaderboard

import (
	"context"
	"errors"
	"testing"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/memory"
)

func seed(t *testing.T, reg *memory.Registry, name string, amounts ...float64) {
	t.Helper()
	ctx := context.Background()
	team, err := reg.CreateTeam(ctx, name, 100)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	for _, amount := range amounts {
		if _, err := reg.AppendContribution(ctx, team.ID, domain.Contribution{Name: "x", Amount: amount}); err != nil {
			t.Fatalf("contribute %s: %v", name, err)
		}
	}
}

func TestProjectRanksDescendingWithStableTies(t *testing.T) {
	reg := memory.NewRegistry()
	seed(t, reg, "A", 10)
	seed(t, reg, "B", 50)
	seed(t, reg, "C", 10)
	seed(t, reg, "D")

	entries, err := New(reg).Project(context.Background())
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	want := []domain.LeaderboardEntry{
		{Name: "B", TotalContributions: 50},
		{Name: "A", TotalContributions: 10},
		{Name: "C", TotalContributions: 10},
		{Name: "D", TotalContributions: 0},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestProjectDoesNotReorderRegistry(t *testing.T) {
	reg := memory.NewRegistry()
	seed(t, reg, "A", 1)
	seed(t, reg, "B", 5)
	ctx := context.Background()

	if _, err := New(reg).Project(ctx); err != nil {
		t.Fatalf("project: %v", err)
	}
	teams, _ := reg.ListTeams(ctx)
	if teams[0].Name != "A" || teams[1].Name != "B" {
		t.Fatalf("registry order changed: %s, %s", teams[0].Name, teams[1].Name)
	}
}

func TestProjectEmpty(t *testing.T) {
	entries, err := New(memory.NewRegistry()).Project(context.Background())
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

type failingLister struct{}

func (failingLister) ListTeams(context.Context) ([]domain.Team, error) {
	return nil, errors.New("boom")
}

func TestProjectPropagatesErrors(t *testing.T) {
	if _, err := New(failingLister{}).Project(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
