package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"leetcode-buddy/internal/app"
	"leetcode-buddy/internal/bot"
	"leetcode-buddy/internal/config"
	"leetcode-buddy/internal/discord"
	"leetcode-buddy/internal/infra/memory"
	pgstore "leetcode-buddy/internal/infra/postgres"
	redisstore "leetcode-buddy/internal/infra/redis"
	"leetcode-buddy/internal/leetcode"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath)
		},
	}
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" {
		return fmt.Errorf("discord token not configured")
	}
	if cfg.Discord.GuildID == "" {
		return fmt.Errorf("discord guild_id not configured")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	var store app.Store = memory.NewStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewStore(pool)
	}

	signupTTL := config.TTLDuration(cfg.Redis.SignupTTL, 5*time.Minute)
	var signups app.SignupStore = memory.NewSignupStore(signupTTL)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		signups = redisstore.NewSignupStore(client, signupTTL)
	}

	source := leetcode.NewClient(cfg.LeetCode.BaseURL, config.TTLDuration(cfg.LeetCode.Timeout, 30*time.Second))
	client := discord.NewClient(cfg.Discord.Token)
	channels := bot.NewChannels(client, cfg.Discord.GuildID)

	groups := app.NewGroupService(store, channels, cfg.Bot.GroupCapacity)
	users := app.NewUserService(store, source, signups, groups, cfg.Bot.LeaderboardLimit)
	scheduler := app.NewScheduler(store, source, channels, cfg.Bot.DailyPoints)

	b := bot.New(client, users, cfg.Bot.CommandPrefix)
	gateway := discord.NewGateway(client, b.Handlers())

	gateway.Start(ctx)
	scheduler.Start(ctx)
	log.Printf("leetcode-buddy running for guild %s", cfg.Discord.GuildID)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	scheduler.Stop()
	gateway.Stop()
	return nil
}
