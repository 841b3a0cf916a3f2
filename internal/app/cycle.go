package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leetcode-buddy/internal/domain"
)

// Announcer pushes cycle messages to group channels.
type Announcer interface {
	BroadcastQuestion(ctx context.Context, channelID string, question domain.DailyQuestion, points int) error
}

// Scheduler drives the two recurring daily phases: distribute a fresh
// challenge to every group at 00:00 UTC, and score the previous day's
// challenge at 01:00 UTC, after its 24 hour solve window has closed.
type Scheduler struct {
	store     Store
	source    QuestionSource
	announcer Announcer
	points    int
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(store Store, source QuestionSource, announcer Announcer, points int) *Scheduler {
	if points <= 0 {
		points = 5
	}
	return &Scheduler{
		store:     store,
		source:    source,
		announcer: announcer,
		points:    points,
		now:       time.Now,
	}
}

// NewSchedulerWithClock is test-only for deterministic phase timing.
func NewSchedulerWithClock(store Store, source QuestionSource, announcer Announcer, points int, now func() time.Time) *Scheduler {
	s := NewScheduler(store, source, announcer, points)
	s.now = now
	return s
}

// Start launches both phase loops. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop(ctx, 0, "distribute", s.Distribute)
	go s.loop(ctx, 1, "score", s.Score)
}

// Stop cancels both loops and waits for any in-flight phase to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// loop sleeps until the next wall-clock hour (UTC) and runs the phase once
// per day. The timer is re-anchored after every run so phase execution time
// never shifts the schedule off the hour.
func (s *Scheduler) loop(ctx context.Context, hourUTC int, name string, phase func(context.Context) error) {
	defer s.wg.Done()

	timer := time.NewTimer(untilNextHour(s.now(), hourUTC))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := phase(ctx); err != nil {
			log.Printf("%s phase: %v", name, err)
		}
		timer.Reset(untilNextHour(s.now(), hourUTC))
	}
}

// untilNextHour returns the delay until the next occurrence of hourUTC:00.
func untilNextHour(now time.Time, hourUTC int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// Distribute picks an unused question, records it, and fans it out to
// every group with a channel. Delivery is best-effort per group.
func (s *Scheduler) Distribute(ctx context.Context) error {
	used, err := s.store.UsedSlugs(ctx)
	if err != nil {
		return fmt.Errorf("load used slugs: %w", err)
	}

	candidate, err := s.source.FetchRandomQuestion(ctx, used)
	if err != nil {
		return fmt.Errorf("fetch question: %w", err)
	}

	question, err := s.store.SaveDailyQuestion(ctx, candidate.Slug, candidate.Title, candidate.Difficulty)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		if group.ChannelID == "" {
			continue
		}
		group := group
		g.Go(func() error {
			if err := s.announcer.BroadcastQuestion(gctx, group.ChannelID, question, s.points); err != nil {
				log.Printf("send question to %s: %v", group.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("daily question sent: %s", question.Title)
	return nil
}

// scoreDelay keeps the scoring phase off the question dispatched earlier
// the same day, whose solve window is still open. scoreLookback bounds how
// far back a question remains scorable.
const (
	scoreDelay    = 2 * time.Hour
	scoreLookback = 26 * time.Hour
)

// Score evaluates every registered user against the question dispatched the
// previous day, once its full solve window has elapsed. One submission row
// is written per user per cycle; a solve adds the configured points to both
// scores.
func (s *Scheduler) Score(ctx context.Context) error {
	now := s.now().UTC()
	question, err := s.store.QuestionSentBetween(ctx, now.Add(-scoreLookback), now.Add(-scoreDelay))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load question: %w", err)
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		solved, err := s.source.CheckSubmission(ctx, user.Handle, question.Slug, question.SentUnix)
		if err != nil {
			log.Printf("check submission for %s: %v", user.Handle, err)
			continue
		}

		fresh, err := s.store.SaveSubmission(ctx, user.DiscordID, question.ID, solved)
		if err != nil {
			log.Printf("save submission for %s: %v", user.DiscordID, err)
			continue
		}
		if !fresh || !solved {
			continue
		}

		if err := s.store.UpdateScores(ctx, user.DiscordID, user.MonthlyScore+s.points, user.WeeklyScore+s.points); err != nil {
			log.Printf("update scores for %s: %v", user.DiscordID, err)
		}
	}

	log.Printf("submissions checked for %q", question.Slug)
	return nil
}
