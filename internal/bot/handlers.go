package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"leetcode-buddy/internal/app"
	"leetcode-buddy/internal/discord"
	"leetcode-buddy/internal/domain"
)

const (
	registerButtonID = "register"
	usernameModalID  = "leetcode_username_modal"
	usernameInputID  = "leetcode_username"
)

// Bot wires gateway events to the application services.
type Bot struct {
	client *discord.Client
	users  *app.UserService
	prefix string
}

func New(client *discord.Client, users *app.UserService, prefix string) *Bot {
	if prefix == "" {
		prefix = "!"
	}
	return &Bot{client: client, users: users, prefix: prefix}
}

// Handlers returns the gateway event handlers for this bot.
func (b *Bot) Handlers() discord.EventHandlers {
	return discord.EventHandlers{
		OnMemberJoin:    b.handleMemberJoin,
		OnMessageCreate: b.handleMessage,
		OnInteraction:   b.handleInteraction,
	}
}

// handleMemberJoin opens a signup session and DMs the registration prompt.
func (b *Bot) handleMemberJoin(ctx context.Context, member *discord.Member) {
	if member.User == nil || member.User.Bot {
		return
	}
	userID := member.User.ID

	if err := b.users.BeginSignup(ctx, userID); err != nil {
		log.Printf("begin signup for %s: %v", userID, err)
		return
	}

	dm, err := b.client.CreateDM(ctx, userID)
	if err != nil {
		log.Printf("open dm with %s: %v", userID, err)
		return
	}
	err = b.client.SendMessage(ctx, dm, discord.Message{
		Embeds: []discord.Embed{welcomeEmbed(userID)},
		Components: []discord.Component{{
			Type: 1, // action row
			Components: []discord.Component{{
				Type:     2, // button
				Style:    1, // primary
				Label:    "Register with Leetcode Username",
				CustomID: registerButtonID,
			}},
		}},
	})
	if err != nil {
		log.Printf("send welcome to %s: %v", userID, err)
	}
}

func (b *Bot) handleInteraction(ctx context.Context, interaction *discord.Interaction) {
	sender := interaction.Sender()
	if sender == nil {
		return
	}

	switch {
	case interaction.Type == discord.InteractionMessageComponent && interaction.Data.CustomID == registerButtonID:
		err := b.client.RespondModal(ctx, interaction, "Welcome to Leetcode Buddy! 🧠", usernameModalID, []discord.Component{{
			Type: 1,
			Components: []discord.Component{{
				Type:        4, // text input
				Style:       1, // short
				CustomID:    usernameInputID,
				Label:       "Your Leetcode Username",
				Placeholder: "Enter your Leetcode username here...",
				Required:    true,
				MaxLength:   50,
			}},
		}})
		if err != nil {
			log.Printf("open registration modal: %v", err)
		}
	case interaction.Type == discord.InteractionModalSubmit && interaction.Data.CustomID == usernameModalID:
		b.completeRegistration(ctx, interaction, sender.ID)
	}
}

func (b *Bot) completeRegistration(ctx context.Context, interaction *discord.Interaction, userID string) {
	handle := strings.TrimSpace(interaction.TextValue(usernameInputID))

	info, err := b.users.Register(ctx, userID, handle)
	if err != nil {
		b.respondText(ctx, interaction, registrationNotice(handle, err))
		return
	}

	if err := b.client.RespondMessage(ctx, interaction, discord.Message{
		Embeds: []discord.Embed{registrationSuccessEmbed(userID, handle, info)},
	}); err != nil {
		log.Printf("respond registration success: %v", err)
	}
}

func registrationNotice(handle string, err error) string {
	switch {
	case errors.Is(err, domain.ErrSignupExpired):
		return "❌ Your registration session expired. Ask an admin to re-invite you."
	case errors.Is(err, domain.ErrInvalidHandle):
		return "❌ The Leetcode username '" + handle + "' doesn't exist or is invalid. Please try again."
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "You're already registered! Welcome back! 🎉"
	default:
		log.Printf("registration: %v", err)
		return "❌ Registration failed. Please try again or contact an admin."
	}
}

func (b *Bot) respondText(ctx context.Context, interaction *discord.Interaction, text string) {
	if err := b.client.RespondMessage(ctx, interaction, discord.Message{Content: text}); err != nil {
		log.Printf("respond interaction: %v", err)
	}
}

// handleMessage routes prefix commands.
func (b *Bot) handleMessage(ctx context.Context, msg *discord.MessageCreate) {
	if msg.Author.Bot || !strings.HasPrefix(msg.Content, b.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Content, b.prefix))
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "update_username":
		if len(fields) < 2 {
			b.sendText(ctx, msg.ChannelID, "Usage: "+b.prefix+"update_username <username>")
			return
		}
		b.cmdUpdateUsername(ctx, msg, fields[1])
	case "profile":
		b.cmdProfile(ctx, msg)
	case "leaderboard":
		kind := "monthly"
		if len(fields) > 1 {
			kind = strings.ToLower(fields[1])
		}
		b.cmdLeaderboard(ctx, msg, kind)
	}
}

func (b *Bot) cmdUpdateUsername(ctx context.Context, msg *discord.MessageCreate, handle string) {
	err := b.users.UpdateUsername(ctx, msg.Author.ID, handle)
	switch {
	case err == nil:
		b.sendText(ctx, msg.ChannelID, "✅ Successfully updated your Leetcode username to: `"+handle+"`")
	case errors.Is(err, domain.ErrInvalidHandle):
		b.sendText(ctx, msg.ChannelID, "❌ The Leetcode username '"+handle+"' doesn't exist or is invalid.")
	case errors.Is(err, domain.ErrNotRegistered):
		b.sendText(ctx, msg.ChannelID, "❌ You're not registered yet. Please complete registration first when you joined the server.")
	default:
		log.Printf("update username: %v", err)
		b.sendText(ctx, msg.ChannelID, "❌ Failed to update username. Please try again.")
	}
}

func (b *Bot) cmdProfile(ctx context.Context, msg *discord.MessageCreate) {
	user, err := b.users.Profile(ctx, msg.Author.ID)
	switch {
	case err == nil:
		b.sendEmbed(ctx, msg.ChannelID, profileEmbed(user))
	case errors.Is(err, domain.ErrNotRegistered):
		b.sendText(ctx, msg.ChannelID, "You're not registered yet. Please complete registration first when you joined the server.")
	default:
		log.Printf("profile: %v", err)
		b.sendText(ctx, msg.ChannelID, "Failed to fetch profile.")
	}
}

func (b *Bot) cmdLeaderboard(ctx context.Context, msg *discord.MessageCreate, kind string) {
	if kind == "weekly" {
		_, users, err := b.users.GroupWeeklyLeaderboard(ctx, msg.Author.ID)
		switch {
		case err == nil:
			b.sendEmbed(ctx, msg.ChannelID, leaderboardEmbed("🏆 Weekly Group Leaderboard", colorGold, users, func(u domain.User) int { return u.WeeklyScore }))
		case errors.Is(err, domain.ErrNotInGroup):
			b.sendText(ctx, msg.ChannelID, "You're not in any group yet. Please complete registration first.")
		default:
			log.Printf("weekly leaderboard: %v", err)
			b.sendText(ctx, msg.ChannelID, "Failed to fetch leaderboard.")
		}
		return
	}

	users, err := b.users.MonthlyLeaderboard(ctx)
	if err != nil {
		log.Printf("monthly leaderboard: %v", err)
		b.sendText(ctx, msg.ChannelID, "Failed to fetch leaderboard.")
		return
	}
	b.sendEmbed(ctx, msg.ChannelID, leaderboardEmbed("🌟 Monthly Global Leaderboard", colorCoral, users, func(u domain.User) int { return u.MonthlyScore }))
}

func (b *Bot) sendText(ctx context.Context, channelID, text string) {
	if err := b.client.SendMessage(ctx, channelID, discord.Message{Content: text}); err != nil {
		log.Printf("send message: %v", err)
	}
}

func (b *Bot) sendEmbed(ctx context.Context, channelID string, embed discord.Embed) {
	if err := b.client.SendMessage(ctx, channelID, discord.Message{Embeds: []discord.Embed{embed}}); err != nil {
		log.Printf("send embed: %v", err)
	}
}
