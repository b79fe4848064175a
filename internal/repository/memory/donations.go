package memory

import (
	"context"
	"sync"

	"github.com/Saku-iyadurai/GivingteamChallenge/internal/domain"
	"github.com/Saku-iyadurai/GivingteamChallenge/internal/repository"
)

// DonationStore keeps direct nonprofit donations in insertion order.
type DonationStore struct {
	mu        sync.RWMutex
	donations []domain.Donation
}

var _ repository.DonationRepository = (*DonationStore)(nil)

// NewDonationStore returns an empty store.
func NewDonationStore() *DonationStore {
	return &DonationStore{}
}

// AppendDonation stores a donation.
func (s *DonationStore) AppendDonation(ctx context.Context, donation domain.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations = append(s.donations, donation)
	return nil
}

// ListDonations returns a copy of every donation.
func (s *DonationStore) ListDonations(ctx context.Context) ([]domain.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]domain.Donation, 0, len(s.donations)), s.donations...), nil
}

// Reset drops every donation.
func (s *DonationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations = nil
}
