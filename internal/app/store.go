package app

import (
	"context"
	"time"

	"leetcode-buddy/internal/domain"
)

// Store abstracts how users, groups, questions, and submissions are
// persisted (Postgres in production, in-memory for tests).
//
// Reads return domain.ErrNotFound when the row is absent; any other error
// means the store call itself failed and callers should treat the result
// as unknown rather than missing.
type Store interface {
	GetUser(ctx context.Context, discordID string) (domain.User, error)
	CreateUser(ctx context.Context, discordID, handle string) (domain.User, error)
	UpdateUsername(ctx context.Context, discordID, handle string) error
	// UpdateScores is a read-then-write replacement of both scores. The
	// scheduler is the only score writer in-process, so the race with a
	// concurrent writer is accepted.
	UpdateScores(ctx context.Context, discordID string, monthly, weekly int) error
	ListUsers(ctx context.Context) ([]domain.User, error)

	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, name string) (domain.Group, error)
	UpdateGroupChannel(ctx context.Context, groupID int64, channelID string) error
	GroupMembers(ctx context.Context, groupID int64) ([]domain.GroupMembership, error)
	// MemberCounts returns member counts for every group in one query.
	MemberCounts(ctx context.Context) (map[int64]int, error)
	// AddMember inserts the membership only while the group holds fewer
	// than capacity members; it returns false when the group is full or
	// the user already belongs to a group.
	AddMember(ctx context.Context, groupID int64, discordID string, capacity int) (bool, error)
	UserGroup(ctx context.Context, discordID string) (domain.Group, error)

	SaveDailyQuestion(ctx context.Context, slug, title, difficulty string) (domain.DailyQuestion, error)
	UsedSlugs(ctx context.Context) ([]string, error)
	// QuestionSentBetween returns the oldest question dispatched within
	// [from, to].
	QuestionSentBetween(ctx context.Context, from, to time.Time) (domain.DailyQuestion, error)

	// SaveSubmission returns false when a row for (user, question)
	// already exists, keeping scoring idempotent per cycle.
	SaveSubmission(ctx context.Context, userID string, questionID int64, solved bool) (bool, error)

	MonthlyLeaderboard(ctx context.Context, limit int) ([]domain.User, error)
	GroupWeeklyLeaderboard(ctx context.Context, groupID int64) ([]domain.User, error)
}

// QuestionSource is the LeetCode-facing side of the system.
type QuestionSource interface {
	ValidateUsername(ctx context.Context, handle string) (bool, error)
	FetchRandomQuestion(ctx context.Context, usedSlugs []string) (domain.Question, error)
	CheckSubmission(ctx context.Context, handle, slug string, afterUnix int64) (bool, error)
}
