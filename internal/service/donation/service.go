package donation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// Service records direct donations to nonprofits.
type Service struct {
	store   repository.DonationRepository
	journal repository.Journal
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a donation service. A nil journal records nothing.
func New(store repository.DonationRepository, journal repository.Journal, logger *slog.Logger) Service {
	if journal == nil {
		journal = repository.NopJournal{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Service{
		store:   store,
		journal: journal,
		logger:  logger.With("component", "donation"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Donate validates and stores a donation.
func (s Service) Donate(ctx context.Context, nonprofitID, rawAmount string) (*domain.Donation, error) {
	nonprofitID = strings.TrimSpace(nonprofitID)
	if nonprofitID == "" {
		return nil, domain.Invalid("nonprofitId", "is required")
	}
	amount, err := domain.ParseAmount("amount", rawAmount)
	if err != nil {
		return nil, err
	}
	donation := domain.Donation{
		ID:          uuid.NewString(),
		NonprofitID: nonprofitID,
		Amount:      amount,
		Timestamp:   s.now(),
	}
	if err := s.store.AppendDonation(ctx, donation); err != nil {
		return nil, err
	}
	if err := s.journal.RecordDonation(ctx, donation); err != nil {
		s.logger.Warn("journal donation failed", "donation_id", donation.ID, "error", err)
	}
	s.logger.Info("donation saved", "donation_id", donation.ID, "nonprofit_id", nonprofitID, "amount", amount)
	return &donation, nil
}

// List returns donations in the order they were made.
func (s Service) List(ctx context.Context) ([]domain.Donation, error) {
	return s.store.ListDonations(ctx)
}
