package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elchinm/attendance-gate/internal/attendance"
	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/database/postgres"
	"github.com/elchinm/attendance-gate/internal/notify"
	"github.com/elchinm/attendance-gate/internal/salary"
	"github.com/elchinm/attendance-gate/internal/storage"
	"github.com/elchinm/attendance-gate/internal/subscription"
	"github.com/elchinm/attendance-gate/internal/telegram"
	"github.com/elchinm/attendance-gate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long:  "Starts the HTTP server with the attendance endpoint, the Telegram webhook and the admin API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}

		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		workers := postgres.NewWorkerRepository(pool)
		events := postgres.NewEventRepository(pool)
		subscriptions := postgres.NewSubscriptionRepository(pool)
		allowList := postgres.NewAllowListRepository(pool)
		salaryRules := postgres.NewSalaryRuleRepository(pool)

		index := database.NewDescriptorIndex()
		enrolled, err := workers.ListEnrolled(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load enrolled workers: %w", err)
		}
		index.Rebuild(enrolled)
		fmt.Printf("Descriptor index ready with %d enrolled workers\n", index.Count())

		var bot *telegram.Client
		var announcer attendance.Announcer
		if cfg.Telegram.Enabled() {
			bot = telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
			announcer = notify.New(bot, subscriptions, cfg.Messages.Telegram)
			fmt.Println("Telegram notifications enabled")
		} else {
			fmt.Println("TELEGRAM_BOT_TOKEN not set, notifications disabled")
		}

		service := attendance.NewService(workers, events, announcer, cfg.Face.Threshold)
		registry := subscription.NewRegistry(allowList, subscriptions)
		calculator := salary.NewCalculator(workers, events, salaryRules)

		uploads, err := storage.New(cfg.Upload.Dir)
		if err != nil {
			return fmt.Errorf("failed to prepare upload storage: %w", err)
		}

		server := web.NewServer(cfg, web.Dependencies{
			Attendance:  service,
			Registry:    registry,
			Bot:         bot,
			Workers:     workers,
			Events:      events,
			AllowList:   allowList,
			SalaryRules: salaryRules,
			Salary:      calculator,
			Index:       index,
			Uploads:     uploads,
		})

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Printf("Server shutdown error: %v\n", err)
			}
		}()

		fmt.Printf("Starting server on %s:%d\n", cfg.Web.Host, cfg.Web.Port)
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
