package app

import (
	"context"
	"errors"
	"fmt"

	"leetcode-buddy/internal/domain"
)

// SignupStore tracks short-lived registration sessions keyed by Discord
// user ID. Sessions expire on their own; Delete is for early consumption.
type SignupStore interface {
	Create(ctx context.Context, discordID string) error
	Active(ctx context.Context, discordID string) (bool, error)
	Delete(ctx context.Context, discordID string) error
}

// UserService covers registration and the user-facing read commands.
type UserService struct {
	store   Store
	source  QuestionSource
	signups SignupStore
	groups  *GroupService
	lbLimit int
}

func NewUserService(store Store, source QuestionSource, signups SignupStore, groups *GroupService, leaderboardLimit int) *UserService {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 10
	}
	return &UserService{
		store:   store,
		source:  source,
		signups: signups,
		groups:  groups,
		lbLimit: leaderboardLimit,
	}
}

// BeginSignup opens a registration session for a newly joined member.
func (s *UserService) BeginSignup(ctx context.Context, discordID string) error {
	return s.signups.Create(ctx, discordID)
}

// Register validates the handle, creates the user, and assigns them to a
// group. The signup session must still be active.
func (s *UserService) Register(ctx context.Context, discordID, handle string) (domain.GroupInfo, error) {
	active, err := s.signups.Active(ctx, discordID)
	if err != nil {
		return domain.GroupInfo{}, fmt.Errorf("check signup session: %w", err)
	}
	if !active {
		return domain.GroupInfo{}, domain.ErrSignupExpired
	}

	valid, err := s.source.ValidateUsername(ctx, handle)
	if err != nil {
		return domain.GroupInfo{}, fmt.Errorf("validate handle: %w", err)
	}
	if !valid {
		return domain.GroupInfo{}, domain.ErrInvalidHandle
	}

	if _, err := s.store.GetUser(ctx, discordID); err == nil {
		return domain.GroupInfo{}, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.GroupInfo{}, fmt.Errorf("lookup user: %w", err)
	}

	if _, err := s.store.CreateUser(ctx, discordID, handle); err != nil {
		return domain.GroupInfo{}, fmt.Errorf("create user: %w", err)
	}

	info, err := s.groups.Assign(ctx, discordID)
	if err != nil {
		return domain.GroupInfo{}, err
	}

	_ = s.signups.Delete(ctx, discordID)
	return info, nil
}

// UpdateUsername swaps the user's LeetCode handle after validating it.
func (s *UserService) UpdateUsername(ctx context.Context, discordID, handle string) error {
	valid, err := s.source.ValidateUsername(ctx, handle)
	if err != nil {
		return fmt.Errorf("validate handle: %w", err)
	}
	if !valid {
		return domain.ErrInvalidHandle
	}

	err = s.store.UpdateUsername(ctx, discordID, handle)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotRegistered
	}
	return err
}

// Profile returns the caller's user row.
func (s *UserService) Profile(ctx context.Context, discordID string) (domain.User, error) {
	user, err := s.store.GetUser(ctx, discordID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrNotRegistered
	}
	return user, err
}

// MonthlyLeaderboard returns the global top users by monthly score.
func (s *UserService) MonthlyLeaderboard(ctx context.Context) ([]domain.User, error) {
	return s.store.MonthlyLeaderboard(ctx, s.lbLimit)
}

// GroupWeeklyLeaderboard returns the caller's group ranked by weekly score.
func (s *UserService) GroupWeeklyLeaderboard(ctx context.Context, discordID string) (domain.Group, []domain.User, error) {
	group, err := s.store.UserGroup(ctx, discordID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Group{}, nil, domain.ErrNotInGroup
	}
	if err != nil {
		return domain.Group{}, nil, err
	}
	users, err := s.store.GroupWeeklyLeaderboard(ctx, group.ID)
	return group, users, err
}
