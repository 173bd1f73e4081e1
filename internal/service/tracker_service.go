package service

import (
	"context"
	"fmt"

	"plan-tracker/internal/model"
	"plan-tracker/internal/repository"
	"plan-tracker/internal/tracker"
)

// TrackerService reads a user's full data set and turns it into a snapshot.
type TrackerService struct {
	planRepo     *repository.PlanRepository
	categoryRepo *repository.CategoryRepository
	checkRepo    *repository.CheckRepository
}

func NewTrackerService(planRepo *repository.PlanRepository, categoryRepo *repository.CategoryRepository, checkRepo *repository.CheckRepository) *TrackerService {
	return &TrackerService{planRepo: planRepo, categoryRepo: categoryRepo, checkRepo: checkRepo}
}

// Snapshot reads every plan, category and check of the user. Callers take a
// new snapshot after each write instead of patching an old one.
func (s *TrackerService) Snapshot(ctx context.Context, user *model.User) (*tracker.Snapshot, error) {
	plans, err := s.planRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	checks, err := s.checkRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	snap, err := tracker.NewSnapshot(plans, categories, checks)
	if err != nil {
		return nil, fmt.Errorf("build snapshot for user %d: %w", user.ID, err)
	}
	return snap, nil
}
