package domain

import "time"

// User is a registered community member tracked against their LeetCode handle.
type User struct {
	DiscordID    string
	Handle       string
	MonthlyScore int
	WeeklyScore  int
	CreatedAt    time.Time
}

// Group is a practice team with an optional Discord channel attached
// lazily after creation.
type Group struct {
	ID        int64
	Name      string
	ChannelID string
	CreatedAt time.Time
}

// GroupMembership links a user to exactly one group.
type GroupMembership struct {
	GroupID   int64
	DiscordID string
	JoinedAt  time.Time
}

// GroupInfo is the assignment result handed back to the registration flow.
type GroupInfo struct {
	ID        int64
	Name      string
	ChannelID string
}

// Question is a candidate challenge fetched from the question bank.
type Question struct {
	Slug       string
	Title      string
	Difficulty string
	PaidOnly   bool
}

// DailyQuestion is a challenge that was dispatched to all groups.
// SentUnix is the epoch second used to gate submission checks.
type DailyQuestion struct {
	ID         int64
	Slug       string
	Title      string
	Difficulty string
	SentAt     time.Time
	SentUnix   int64
}

// Submission records one scoring-phase evaluation of a user against a question.
type Submission struct {
	UserID     string
	QuestionID int64
	Solved     bool
	CheckedAt  time.Time
}
