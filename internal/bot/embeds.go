package bot

import (
	"fmt"
	"strings"

	"leetcode-buddy/internal/discord"
	"leetcode-buddy/internal/domain"
)

const (
	colorGreen = 0x00FF00
	colorBlue  = 0x7289DA
	colorGold  = 0xFFD700
	colorCoral = 0xFF6B6B
)

func newMemberEmbed(discordID string) discord.Embed {
	return discord.Embed{
		Title:       "🎉 New Member Alert!",
		Description: fmt.Sprintf("Welcome <@%s> to the group!", discordID),
		Color:       colorGreen,
		Fields: []discord.EmbedField{
			{Name: "Group Info", Value: "You're now part of a team! Daily challenges will be posted here at 12 AM UTC."},
			{Name: "Good luck!", Value: "Let's code together and build those problem-solving skills! 💪"},
		},
	}
}

func dailyQuestionEmbed(question domain.DailyQuestion, points int) discord.Embed {
	return discord.Embed{
		Title:       "🧠 Daily LeetCode Challenge",
		Description: fmt.Sprintf("**%s**\n\nDifficulty: %s", question.Title, question.Difficulty),
		URL:         fmt.Sprintf("https://leetcode.com/problems/%s/", question.Slug),
		Color:       colorGreen,
		Fields: []discord.EmbedField{
			{Name: "⏰ Deadline", Value: "24 hours from now"},
			{Name: "🎯 Points", Value: fmt.Sprintf("+%d points for solving", points)},
		},
		Footer: &discord.EmbedFooter{Text: "Good luck team! 💪"},
	}
}

func welcomeEmbed(discordID string) discord.Embed {
	return discord.Embed{
		Title:       "Welcome to Leetcode Buddy! 🧠",
		Description: fmt.Sprintf("Hey <@%s>! Register your LeetCode username to join a practice group.", discordID),
		Color:       colorBlue,
		Fields: []discord.EmbedField{
			{Name: "How it works", Value: "• Daily Leetcode challenges sent to small groups (max 5 people)\n• Solve questions within 24 hours to earn points\n• Compete on monthly global and weekly group leaderboards\n• Build consistency and accountability!"},
		},
	}
}

func registrationSuccessEmbed(discordID, handle string, info domain.GroupInfo) discord.Embed {
	channel := "pending setup"
	if info.ChannelID != "" {
		channel = fmt.Sprintf("<#%s>", info.ChannelID)
	}
	return discord.Embed{
		Title:       "🎉 Registration Successful!",
		Description: fmt.Sprintf("Welcome to Leetcode Buddy, <@%s>!", discordID),
		Color:       colorGreen,
		Fields: []discord.EmbedField{
			{Name: "Leetcode Username", Value: handle, Inline: true},
			{Name: "Assigned Group", Value: info.Name, Inline: true},
			{Name: "Group Channel", Value: channel, Inline: true},
			{Name: "What's Next?", Value: "• Daily questions will be posted at 12 AM UTC\n• Solve them within 24 hours to earn points\n• Check leaderboards with `!leaderboard`"},
		},
		Footer: &discord.EmbedFooter{Text: "Good luck with your coding journey! 💪"},
	}
}

func profileEmbed(user domain.User) discord.Embed {
	return discord.Embed{
		Title: fmt.Sprintf("Profile: <@%s>", user.DiscordID),
		Color: colorBlue,
		Fields: []discord.EmbedField{
			{Name: "LeetCode Username", Value: user.Handle, Inline: true},
			{Name: "Monthly Score", Value: fmt.Sprintf("%d points", user.MonthlyScore), Inline: true},
			{Name: "Weekly Score", Value: fmt.Sprintf("%d points", user.WeeklyScore), Inline: true},
		},
	}
}

func leaderboardEmbed(title string, color int, users []domain.User, score func(domain.User) int) discord.Embed {
	embed := discord.Embed{Title: title, Color: color}
	if len(users) == 0 {
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: "No data", Value: "No users found"})
		return embed
	}

	var b strings.Builder
	for i, user := range users {
		medal := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&b, "%s **%s** - %d points\n", medal, user.Handle, score(user))
	}
	embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Rankings", Value: b.String()})
	return embed
}
