package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"leetcode-buddy/internal/domain"
	pgstore "leetcode-buddy/internal/infra/postgres"
	pgmigrations "leetcode-buddy/internal/infra/postgres/migrations"
)

func TestStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()
	migrateDB(t, ctx, dsn)

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewStore(pool)

	// Users.
	if _, err := store.GetUser(ctx, "u1"); err != domain.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	user, err := store.CreateUser(ctx, "u1", "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.MonthlyScore != 0 || user.WeeklyScore != 0 {
		t.Fatalf("fresh user must start at zero, got %+v", user)
	}
	if err := store.UpdateUsername(ctx, "u1", "alice2"); err != nil {
		t.Fatalf("update username: %v", err)
	}
	if err := store.UpdateUsername(ctx, "ghost", "x"); err != domain.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// Groups, conditional membership.
	group, err := store.CreateGroup(ctx, "Group-1")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := store.UpdateGroupChannel(ctx, group.ID, "chan-1"); err != nil {
		t.Fatalf("update channel: %v", err)
	}

	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("m%d", i)
		if _, err := store.CreateUser(ctx, id, id); err != nil {
			t.Fatalf("create user %s: %v", id, err)
		}
		ok, err := store.AddMember(ctx, group.ID, id, 2)
		if err != nil || !ok {
			t.Fatalf("add member %s: ok=%v err=%v", id, ok, err)
		}
	}
	if ok, err := store.AddMember(ctx, group.ID, "u1", 2); err != nil || ok {
		t.Fatalf("capacity must hold at the store: ok=%v err=%v", ok, err)
	}
	if ok, err := store.AddMember(ctx, group.ID, "m0", 5); err != nil || ok {
		t.Fatalf("duplicate membership must be refused: ok=%v err=%v", ok, err)
	}

	counts, err := store.MemberCounts(ctx)
	if err != nil {
		t.Fatalf("member counts: %v", err)
	}
	if counts[group.ID] != 2 {
		t.Fatalf("expected 2 members, got %d", counts[group.ID])
	}

	placed, err := store.UserGroup(ctx, "m0")
	if err != nil {
		t.Fatalf("user group: %v", err)
	}
	if placed.ID != group.ID || placed.ChannelID != "chan-1" {
		t.Fatalf("unexpected group %+v", placed)
	}

	// Questions and submissions.
	question, err := store.SaveDailyQuestion(ctx, "two-sum", "Two Sum", "Easy")
	if err != nil {
		t.Fatalf("save question: %v", err)
	}
	slugs, err := store.UsedSlugs(ctx)
	if err != nil || len(slugs) != 1 || slugs[0] != "two-sum" {
		t.Fatalf("used slugs: %v %v", slugs, err)
	}
	got, err := store.QuestionSentBetween(ctx, time.Now().UTC().Add(-time.Hour), time.Now().UTC())
	if err != nil || got.ID != question.ID {
		t.Fatalf("question sent between: %+v %v", got, err)
	}
	if _, err := store.QuestionSentBetween(ctx, time.Now().UTC().Add(time.Hour), time.Now().UTC().Add(2*time.Hour)); err != domain.ErrNotFound {
		t.Fatalf("expected not found outside the window, got %v", err)
	}

	fresh, err := store.SaveSubmission(ctx, "u1", question.ID, true)
	if err != nil || !fresh {
		t.Fatalf("save submission: fresh=%v err=%v", fresh, err)
	}
	fresh, err = store.SaveSubmission(ctx, "u1", question.ID, true)
	if err != nil || fresh {
		t.Fatalf("duplicate submission must be refused: fresh=%v err=%v", fresh, err)
	}

	// Leaderboards.
	if err := store.UpdateScores(ctx, "u1", 10, 10); err != nil {
		t.Fatalf("update scores: %v", err)
	}
	if err := store.UpdateScores(ctx, "m0", 20, 20); err != nil {
		t.Fatalf("update scores: %v", err)
	}
	top, err := store.MonthlyLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("monthly leaderboard: %v", err)
	}
	if len(top) == 0 || top[0].DiscordID != "m0" {
		t.Fatalf("expected m0 leading, got %+v", top)
	}
	weekly, err := store.GroupWeeklyLeaderboard(ctx, group.ID)
	if err != nil {
		t.Fatalf("weekly leaderboard: %v", err)
	}
	if len(weekly) != 2 || weekly[0].DiscordID != "m0" {
		t.Fatalf("expected the 2 group members with m0 leading, got %+v", weekly)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "buddy", "POSTGRES_PASSWORD": "buddypass", "POSTGRES_DB": "buddydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://buddy:buddypass@%s:%s/buddydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
