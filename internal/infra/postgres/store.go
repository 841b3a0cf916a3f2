package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"leetcode-buddy/internal/domain"
)

// Store is the Postgres implementation of app.Store over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUser(ctx context.Context, discordID string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT discord_id, leetcode_username, monthly_score, weekly_score, created_at
		 FROM users WHERE discord_id=$1`, discordID).
		Scan(&user.DiscordID, &user.Handle, &user.MonthlyScore, &user.WeeklyScore, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, discordID, handle string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (discord_id, leetcode_username, monthly_score, weekly_score)
		 VALUES ($1, $2, 0, 0)
		 RETURNING discord_id, leetcode_username, monthly_score, weekly_score, created_at`,
		discordID, handle).
		Scan(&user.DiscordID, &user.Handle, &user.MonthlyScore, &user.WeeklyScore, &user.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) UpdateUsername(ctx context.Context, discordID, handle string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET leetcode_username=$2 WHERE discord_id=$1`, discordID, handle)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateScores(ctx context.Context, discordID string, monthly, weekly int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET monthly_score=$2, weekly_score=$3 WHERE discord_id=$1`,
		discordID, monthly, weekly)
	if err != nil {
		return fmt.Errorf("update scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT discord_id, leetcode_username, monthly_score, weekly_score, created_at
		 FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(channel_id, ''), created_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.ChannelID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (s *Store) CreateGroup(ctx context.Context, name string) (domain.Group, error) {
	var group domain.Group
	err := s.pool.QueryRow(ctx,
		`INSERT INTO groups (name) VALUES ($1)
		 RETURNING id, name, COALESCE(channel_id, ''), created_at`, name).
		Scan(&group.ID, &group.Name, &group.ChannelID, &group.CreatedAt)
	if err != nil {
		return domain.Group{}, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (s *Store) UpdateGroupChannel(ctx context.Context, groupID int64, channelID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE groups SET channel_id=$2 WHERE id=$1`, groupID, channelID)
	if err != nil {
		return fmt.Errorf("update group channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GroupMembers(ctx context.Context, groupID int64) ([]domain.GroupMembership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_id, discord_id, joined_at FROM group_members WHERE group_id=$1 ORDER BY joined_at`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	defer rows.Close()

	var members []domain.GroupMembership
	for rows.Next() {
		var m domain.GroupMembership
		if err := rows.Scan(&m.GroupID, &m.DiscordID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) MemberCounts(ctx context.Context) (map[int64]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT group_id, count(*) FROM group_members GROUP BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("member counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var groupID int64
		var count int
		if err := rows.Scan(&groupID, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[groupID] = count
	}
	return counts, rows.Err()
}

// AddMember inserts only while the group is under capacity and the user is
// unplaced; both checks run inside the insert so concurrent registrations
// cannot overfill a group.
func (s *Store) AddMember(ctx context.Context, groupID int64, discordID string, capacity int) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, discord_id)
		 SELECT $1, $2
		 WHERE (SELECT count(*) FROM group_members WHERE group_id=$1) < $3
		 ON CONFLICT (discord_id) DO NOTHING`,
		groupID, discordID, capacity)
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UserGroup(ctx context.Context, discordID string) (domain.Group, error) {
	var group domain.Group
	err := s.pool.QueryRow(ctx,
		`SELECT g.id, g.name, COALESCE(g.channel_id, ''), g.created_at
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.discord_id=$1`, discordID).
		Scan(&group.ID, &group.Name, &group.ChannelID, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Group{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("user group: %w", err)
	}
	return group, nil
}

func (s *Store) SaveDailyQuestion(ctx context.Context, slug, title, difficulty string) (domain.DailyQuestion, error) {
	now := time.Now().UTC()
	var question domain.DailyQuestion
	err := s.pool.QueryRow(ctx,
		`INSERT INTO daily_questions (question_slug, question_title, difficulty, sent_at, sent_unix)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, question_slug, question_title, difficulty, sent_at, sent_unix`,
		slug, title, difficulty, now, now.Unix()).
		Scan(&question.ID, &question.Slug, &question.Title, &question.Difficulty, &question.SentAt, &question.SentUnix)
	if err != nil {
		return domain.DailyQuestion{}, fmt.Errorf("save daily question: %w", err)
	}
	return question, nil
}

func (s *Store) UsedSlugs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT question_slug FROM daily_questions`)
	if err != nil {
		return nil, fmt.Errorf("used slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (s *Store) QuestionSentBetween(ctx context.Context, from, to time.Time) (domain.DailyQuestion, error) {
	var question domain.DailyQuestion
	err := s.pool.QueryRow(ctx,
		`SELECT id, question_slug, question_title, difficulty, sent_at, sent_unix
		 FROM daily_questions WHERE sent_at BETWEEN $1 AND $2 ORDER BY sent_at LIMIT 1`, from, to).
		Scan(&question.ID, &question.Slug, &question.Title, &question.Difficulty, &question.SentAt, &question.SentUnix)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyQuestion{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.DailyQuestion{}, fmt.Errorf("question sent between: %w", err)
	}
	return question, nil
}

func (s *Store) SaveSubmission(ctx context.Context, userID string, questionID int64, solved bool) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO submissions (user_id, question_id, solved)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, question_id) DO NOTHING`,
		userID, questionID, solved)
	if err != nil {
		return false, fmt.Errorf("save submission: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MonthlyLeaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT discord_id, leetcode_username, monthly_score, weekly_score, created_at
		 FROM users ORDER BY monthly_score DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("monthly leaderboard: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *Store) GroupWeeklyLeaderboard(ctx context.Context, groupID int64) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.discord_id, u.leetcode_username, u.monthly_score, u.weekly_score, u.created_at
		 FROM users u JOIN group_members m ON m.discord_id = u.discord_id
		 WHERE m.group_id=$1 ORDER BY u.weekly_score DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("group weekly leaderboard: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.DiscordID, &user.Handle, &user.MonthlyScore, &user.WeeklyScore, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
