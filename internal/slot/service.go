package slot

import (
	"context"
	"errors"
	"time"

	"groundslot/internal/apperror"
)

type Service interface {
	GetSlot(ctx context.Context, id string) (*Slot, error)
	ListFacilitySlots(ctx context.Context, facilityID string, from, to *time.Time) ([]Slot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetSlot(ctx context.Context, id string) (*Slot, error) {
	if id == "" {
		return nil, apperror.Validation("slot id is required")
	}

	slot, err := s.repo.GetSlotByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil, apperror.NotFound("slot not found", err)
		}
		return nil, apperror.Store("failed to load slot", err)
	}
	return slot, nil
}

func (s *service) ListFacilitySlots(ctx context.Context, facilityID string, from, to *time.Time) ([]Slot, error) {
	if facilityID == "" {
		return nil, apperror.Validation("facility id is required")
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, apperror.Validation("from must be before to")
	}

	slots, err := s.repo.ListSlotsByFacility(ctx, facilityID, from, to)
	if err != nil {
		return nil, apperror.Store("failed to list slots", err)
	}
	return slots, nil
}
