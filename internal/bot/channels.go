package bot

import (
	"context"
	"fmt"
	"strings"

	"leetcode-buddy/internal/discord"
	"leetcode-buddy/internal/domain"
)

const groupCategoryName = "Leetcode Groups"

// Channels adapts the Discord client to the app's ChannelProvisioner and
// Announcer ports for one guild.
type Channels struct {
	client  *discord.Client
	guildID string
}

func NewChannels(client *discord.Client, guildID string) *Channels {
	return &Channels{client: client, guildID: guildID}
}

// CreateGroupChannel creates a text channel under the shared group
// category, creating the category itself on first use.
func (c *Channels) CreateGroupChannel(ctx context.Context, groupName string) (string, error) {
	if c.guildID == "" {
		return "", domain.ErrGuildUnavailable
	}

	categoryID, err := c.ensureCategory(ctx)
	if err != nil {
		return "", err
	}

	channel, err := c.client.CreateGuildChannel(ctx, c.guildID, discord.Channel{
		Type:     discord.ChannelTypeGuildText,
		Name:     strings.ToLower(strings.ReplaceAll(groupName, " ", "-")),
		ParentID: categoryID,
		Topic:    fmt.Sprintf("Leetcode practice group - %s", groupName),
	})
	if err != nil {
		return "", fmt.Errorf("create channel: %w", err)
	}
	return channel.ID, nil
}

func (c *Channels) ensureCategory(ctx context.Context) (string, error) {
	channels, err := c.client.GuildChannels(ctx, c.guildID)
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discord.ChannelTypeGuildCategory && ch.Name == groupCategoryName {
			return ch.ID, nil
		}
	}
	category, err := c.client.CreateGuildChannel(ctx, c.guildID, discord.Channel{
		Type: discord.ChannelTypeGuildCategory,
		Name: groupCategoryName,
	})
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return category.ID, nil
}

// GrantAccess gives the member read/write on their group channel.
func (c *Channels) GrantAccess(ctx context.Context, channelID, discordID string) error {
	return c.client.EditChannelPermissions(ctx, channelID, discordID)
}

// AnnounceMember posts the welcome embed into the group channel.
func (c *Channels) AnnounceMember(ctx context.Context, channelID, discordID string) error {
	return c.client.SendMessage(ctx, channelID, discord.Message{
		Embeds: []discord.Embed{newMemberEmbed(discordID)},
	})
}

// BroadcastQuestion posts the daily challenge embed into a group channel.
func (c *Channels) BroadcastQuestion(ctx context.Context, channelID string, question domain.DailyQuestion, points int) error {
	return c.client.SendMessage(ctx, channelID, discord.Message{
		Content: "@everyone",
		Embeds:  []discord.Embed{dailyQuestionEmbed(question, points)},
	})
}
