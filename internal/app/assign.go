package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"leetcode-buddy/internal/domain"
)

// ChannelProvisioner creates and wires group channels on the delivery
// platform. All methods are best-effort from the engine's point of view:
// a failed provisioning call never rolls back a persisted membership.
type ChannelProvisioner interface {
	CreateGroupChannel(ctx context.Context, groupName string) (string, error)
	GrantAccess(ctx context.Context, channelID, discordID string) error
	AnnounceMember(ctx context.Context, channelID, discordID string) error
}

// GroupService assigns registrants to bounded-capacity groups.
type GroupService struct {
	store    Store
	channels ChannelProvisioner
	capacity int
}

func NewGroupService(store Store, channels ChannelProvisioner, capacity int) *GroupService {
	if capacity <= 0 {
		capacity = 5
	}
	return &GroupService{store: store, channels: channels, capacity: capacity}
}

// assignAttempts bounds rescans after a lost capacity race.
const assignAttempts = 3

// Assign places the user into the first group with spare capacity,
// creating a new group (and its channel) when every group is full.
// Assigning an already-placed user returns their existing group unchanged.
func (s *GroupService) Assign(ctx context.Context, discordID string) (domain.GroupInfo, error) {
	if existing, err := s.store.UserGroup(ctx, discordID); err == nil {
		return domain.GroupInfo{ID: existing.ID, Name: existing.Name, ChannelID: existing.ChannelID}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.GroupInfo{}, fmt.Errorf("resolve current group: %w", err)
	}

	for attempt := 0; attempt < assignAttempts; attempt++ {
		group, err := s.selectGroup(ctx)
		if err != nil {
			return domain.GroupInfo{}, err
		}

		ok, err := s.store.AddMember(ctx, group.ID, discordID, s.capacity)
		if err != nil {
			return domain.GroupInfo{}, fmt.Errorf("add member: %w", err)
		}
		if !ok {
			// Lost the race to a concurrent registration; rescan.
			continue
		}

		if group.ChannelID != "" {
			if err := s.channels.GrantAccess(ctx, group.ChannelID, discordID); err != nil {
				log.Printf("grant channel access for %s: %v", discordID, err)
			}
			if err := s.channels.AnnounceMember(ctx, group.ChannelID, discordID); err != nil {
				log.Printf("announce member %s: %v", discordID, err)
			}
		}
		return domain.GroupInfo{ID: group.ID, Name: group.Name, ChannelID: group.ChannelID}, nil
	}
	return domain.GroupInfo{}, domain.ErrGroupFull
}

// selectGroup finds the first group under capacity or creates the next one.
func (s *GroupService) selectGroup(ctx context.Context) (domain.Group, error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return domain.Group{}, fmt.Errorf("list groups: %w", err)
	}
	counts, err := s.store.MemberCounts(ctx)
	if err != nil {
		return domain.Group{}, fmt.Errorf("count members: %w", err)
	}

	for _, group := range groups {
		if counts[group.ID] < s.capacity {
			return group, nil
		}
	}

	name := fmt.Sprintf("Group-%d", len(groups)+1)
	group, err := s.store.CreateGroup(ctx, name)
	if err != nil {
		return domain.Group{}, fmt.Errorf("create group: %w", err)
	}

	channelID, err := s.channels.CreateGroupChannel(ctx, group.Name)
	if err != nil {
		// The group stays usable without a channel; a later repair pass
		// can attach one.
		log.Printf("create channel for %s: %v", group.Name, err)
		return group, nil
	}
	if err := s.store.UpdateGroupChannel(ctx, group.ID, channelID); err != nil {
		log.Printf("persist channel for %s: %v", group.Name, err)
		return group, nil
	}
	group.ChannelID = channelID
	return group, nil
}
