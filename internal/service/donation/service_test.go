package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository/memory"
	"github.com/Saku-iyadurai/GivingteamChallenge/pkg/logger"
)

type recordingJournal struct {
	repository.NopJournal
	donations []domain.Donation
	err       error
}

func (j *recordingJournal) RecordDonation(_ context.Context, d domain.Donation) error {
	j.donations = append(j.donations, d)
	return j.err
}

func TestDonateStoresDonation(t *testing.T) {
	store := memory.NewDonationStore()
	journal := &recordingJournal{}
	svc := New(store, journal, logger.Discard())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.Donate(context.Background(), " red-cross ", "25.50")
	if err != nil {
		t.Fatalf("donate: %v", err)
	}
	if got.NonprofitID != "red-cross" || got.Amount != 25.5 || !got.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected donation %+v", got)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", got.ID)
	}
	if len(journal.donations) != 1 {
		t.Fatalf("expected donation journaled, got %d", len(journal.donations))
	}
}

func TestDonateValidation(t *testing.T) {
	svc := New(memory.NewDonationStore(), nil, logger.Discard())
	ctx := context.Background()
	cases := []struct{ nonprofit, amount string }{
		{"", "10"},
		{"red-cross", ""},
		{"red-cross", "0"},
		{"red-cross", "-1"},
		{"red-cross", "ten"},
	}
	for _, tc := range cases {
		if _, err := svc.Donate(ctx, tc.nonprofit, tc.amount); !domain.IsValidation(err) {
			t.Fatalf("Donate(%q, %q): expected validation error, got %v", tc.nonprofit, tc.amount, err)
		}
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("rejected donations stored: %d", len(list))
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	svc := New(memory.NewDonationStore(), &recordingJournal{err: errors.New("down")}, logger.Discard())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := svc.Donate(ctx, id, "1"); err != nil {
			t.Fatalf("donate %s: %v", id, err)
		}
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].NonprofitID != "a" || list[2].NonprofitID != "c" {
		t.Fatalf("unexpected order %+v", list)
	}
}
