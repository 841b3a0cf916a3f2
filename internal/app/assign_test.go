package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"leetcode-buddy/internal/app"
	"leetcode-buddy/internal/infra/memory"
)

type fakeChannels struct {
	created   []string
	granted   []string
	announced []string
	createErr error
	nextCh    int
}

func (f *fakeChannels) CreateGroupChannel(_ context.Context, groupName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextCh++
	id := fmt.Sprintf("chan-%d", f.nextCh)
	f.created = append(f.created, groupName)
	return id, nil
}

func (f *fakeChannels) GrantAccess(_ context.Context, channelID, discordID string) error {
	f.granted = append(f.granted, discordID)
	return nil
}

func (f *fakeChannels) AnnounceMember(_ context.Context, channelID, discordID string) error {
	f.announced = append(f.announced, discordID)
	return nil
}

func TestAssignCreatesFirstGroup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	channels := &fakeChannels{}
	service := app.NewGroupService(store, channels, 5)

	info, err := service.Assign(ctx, "u1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if info.Name != "Group-1" {
		t.Fatalf("expected Group-1, got %q", info.Name)
	}
	if info.ChannelID == "" {
		t.Fatalf("expected a channel to be provisioned")
	}

	members, _ := store.GroupMembers(ctx, info.ID)
	if len(members) != 1 || members[0].DiscordID != "u1" {
		t.Fatalf("expected one membership for u1, got %+v", members)
	}
	if len(channels.granted) != 1 || len(channels.announced) != 1 {
		t.Fatalf("expected access grant and welcome for u1")
	}
}

func TestAssignReusesGroupWithCapacity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewGroupService(store, &fakeChannels{}, 5)

	for i := 0; i < 3; i++ {
		if _, err := service.Assign(ctx, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	info, err := service.Assign(ctx, "u-new")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if info.Name != "Group-1" {
		t.Fatalf("expected placement in Group-1, got %q", info.Name)
	}
	groups, _ := store.ListGroups(ctx)
	if len(groups) != 1 {
		t.Fatalf("expected no new group, got %d", len(groups))
	}
}

func TestAssignOverflowsToSecondGroup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewGroupService(store, &fakeChannels{}, 5)

	for i := 0; i < 5; i++ {
		if _, err := service.Assign(ctx, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	info, err := service.Assign(ctx, "u-overflow")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if info.Name != "Group-2" {
		t.Fatalf("expected Group-2 for the sixth user, got %q", info.Name)
	}

	counts, _ := store.MemberCounts(ctx)
	for groupID, count := range counts {
		if count > 5 {
			t.Fatalf("group %d exceeds capacity: %d", groupID, count)
		}
	}
}

func TestAssignIsIdempotentPerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewGroupService(store, &fakeChannels{}, 5)

	first, err := service.Assign(ctx, "u1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	second, err := service.Assign(ctx, "u1")
	if err != nil {
		t.Fatalf("re-assign: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same group on re-assign, got %d and %d", first.ID, second.ID)
	}

	counts, _ := store.MemberCounts(ctx)
	if counts[first.ID] != 1 {
		t.Fatalf("expected a single membership, got %d", counts[first.ID])
	}
}

func TestAssignSurvivesChannelProvisioningFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	channels := &fakeChannels{createErr: errors.New("discord down")}
	service := app.NewGroupService(store, channels, 5)

	info, err := service.Assign(ctx, "u1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if info.ChannelID != "" {
		t.Fatalf("expected empty channel ref, got %q", info.ChannelID)
	}

	group, err := store.UserGroup(ctx, "u1")
	if err != nil {
		t.Fatalf("membership should persist: %v", err)
	}
	if group.Name != "Group-1" {
		t.Fatalf("unexpected group %q", group.Name)
	}
}

func TestCapacityInvariantSequential(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := app.NewGroupService(store, &fakeChannels{}, 5)

	for i := 0; i < 6; i++ {
		if _, err := service.Assign(ctx, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}

	info, err := store.UserGroup(ctx, "u5")
	if err != nil {
		t.Fatalf("user group: %v", err)
	}
	if info.Name != "Group-2" {
		t.Fatalf("expected the sixth user in Group-2, got %q", info.Name)
	}
	if _, err := store.UserGroup(ctx, "u0"); err != nil {
		t.Fatalf("u0 should be placed: %v", err)
	}
}
