package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"leetcode-buddy/internal/domain"
)

// Store is an in-memory implementation of app.Store, used by unit tests
// and when no Postgres URL is configured.
type Store struct {
	mu          sync.RWMutex
	clock       func() time.Time
	users       map[string]*domain.User
	userOrder   []string
	groups      []*domain.Group
	members     []domain.GroupMembership
	questions   []*domain.DailyQuestion
	submissions []domain.Submission
	nextGroupID int64
	nextQID     int64
}

func NewStore() *Store {
	return &Store{
		clock: time.Now,
		users: make(map[string]*domain.User),
	}
}

// NewStoreWithClock is test-only for deterministic timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.clock = now
	return s
}

func (s *Store) GetUser(_ context.Context, discordID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[discordID]; ok {
		return *user, nil
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, discordID, handle string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{
		DiscordID: discordID,
		Handle:    handle,
		CreatedAt: s.clock(),
	}
	s.users[discordID] = user
	s.userOrder = append(s.userOrder, discordID)
	return *user, nil
}

func (s *Store) UpdateUsername(_ context.Context, discordID, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[discordID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Handle = handle
	return nil
}

func (s *Store) UpdateScores(_ context.Context, discordID string, monthly, weekly int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[discordID]
	if !ok {
		return domain.ErrNotFound
	}
	user.MonthlyScore = monthly
	user.WeeklyScore = weekly
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, *s.users[id])
	}
	return users, nil
}

func (s *Store) ListGroups(_ context.Context) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]domain.Group, 0, len(s.groups))
	for _, group := range s.groups {
		groups = append(groups, *group)
	}
	return groups, nil
}

func (s *Store) CreateGroup(_ context.Context, name string) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGroupID++
	group := &domain.Group{ID: s.nextGroupID, Name: name, CreatedAt: s.clock()}
	s.groups = append(s.groups, group)
	return *group, nil
}

func (s *Store) UpdateGroupChannel(_ context.Context, groupID int64, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range s.groups {
		if group.ID == groupID {
			group.ChannelID = channelID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Store) GroupMembers(_ context.Context, groupID int64) ([]domain.GroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []domain.GroupMembership
	for _, m := range s.members {
		if m.GroupID == groupID {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *Store) MemberCounts(_ context.Context) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int64]int)
	for _, m := range s.members {
		counts[m.GroupID]++
	}
	return counts, nil
}

func (s *Store) AddMember(_ context.Context, groupID int64, discordID string, capacity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.members {
		if m.DiscordID == discordID {
			return false, nil
		}
		if m.GroupID == groupID {
			count++
		}
	}
	if count >= capacity {
		return false, nil
	}
	s.members = append(s.members, domain.GroupMembership{
		GroupID:   groupID,
		DiscordID: discordID,
		JoinedAt:  s.clock(),
	})
	return true, nil
}

func (s *Store) UserGroup(_ context.Context, discordID string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.DiscordID == discordID {
			for _, group := range s.groups {
				if group.ID == m.GroupID {
					return *group, nil
				}
			}
		}
	}
	return domain.Group{}, domain.ErrNotFound
}

func (s *Store) SaveDailyQuestion(_ context.Context, slug, title, difficulty string) (domain.DailyQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock().UTC()
	s.nextQID++
	question := &domain.DailyQuestion{
		ID:         s.nextQID,
		Slug:       slug,
		Title:      title,
		Difficulty: difficulty,
		SentAt:     now,
		SentUnix:   now.Unix(),
	}
	s.questions = append(s.questions, question)
	return *question, nil
}

func (s *Store) UsedSlugs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slugs := make([]string, 0, len(s.questions))
	for _, q := range s.questions {
		slugs = append(slugs, q.Slug)
	}
	return slugs, nil
}

func (s *Store) QuestionSentBetween(_ context.Context, from, to time.Time) (domain.DailyQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Questions are appended in dispatch order; the first hit is the oldest.
	for _, q := range s.questions {
		if !q.SentAt.Before(from) && !q.SentAt.After(to) {
			return *q, nil
		}
	}
	return domain.DailyQuestion{}, domain.ErrNotFound
}

func (s *Store) SaveSubmission(_ context.Context, userID string, questionID int64, solved bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.QuestionID == questionID {
			return false, nil
		}
	}
	s.submissions = append(s.submissions, domain.Submission{
		UserID:     userID,
		QuestionID: questionID,
		Solved:     solved,
		CheckedAt:  s.clock(),
	})
	return true, nil
}

func (s *Store) MonthlyLeaderboard(_ context.Context, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, *s.users[id])
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].MonthlyScore > users[j].MonthlyScore
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) GroupWeeklyLeaderboard(_ context.Context, groupID int64) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []domain.User
	for _, m := range s.members {
		if m.GroupID != groupID {
			continue
		}
		if user, ok := s.users[m.DiscordID]; ok {
			users = append(users, *user)
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].WeeklyScore > users[j].WeeklyScore
	})
	return users, nil
}

// Submissions exposes the recorded rows for tests.
func (s *Store) Submissions() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}
