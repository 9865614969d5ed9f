package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cybershield/internal/admin"
	"cybershield/internal/bootstrap"
	"cybershield/internal/conference"
	"cybershield/internal/config"
	"cybershield/internal/metrics"
	"cybershield/internal/notify"
	"cybershield/internal/scheduler"
	"cybershield/internal/service"
	"cybershield/internal/team"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := cfg.Logger()
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, metrics.Default())
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	if cfg.AdminPassword != "" {
		if err := app.Repo.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to seed admin: %v", err)
		}
	} else {
		log.Warn("ADMIN_PASSWORD is not set, admin login keeps the stored password")
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, admin routes will reject every request")
	}

	dashboard := service.NewDashboardService(app.Repo)
	scores := service.NewScoreService(app.Repo)
	teamService := service.NewTeamService(app.Repo.Teams(), app.Repo)

	if cfg.SMTP.Host != "" {
		app.Imports.Subscribe(notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.Recipients))
	}

	if cfg.Telegram.BotToken != "" {
		bot, err := notify.NewTelegramBot(cfg.Telegram.BotToken, app.Imports, dashboard, cfg.Telegram.AdminChatIDs, log.WithField("component", "telegram"))
		if err != nil {
			log.Fatalf("Failed to create telegram bot: %v", err)
		}
		app.Imports.Subscribe(bot)
		go func() {
			log.Info("Bot is starting...")
			if err := bot.Start(ctx); err != nil {
				log.Errorf("Bot stopped with error: %v", err)
			}
		}()
	}

	if cfg.Import.Schedule > 0 {
		sched, err := scheduler.Start(ctx, cfg.Import.Schedule, app.Imports, log.WithField("component", "scheduler"))
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Errorf("Scheduler shutdown: %v", err)
			}
		}()
	}

	router := newRouter(handlers{
		admin:      admin.NewAdminHandler(app.Repo, app.Imports, cfg.Import.Root, cfg.Import.UploadDir, cfg.JWTSecret),
		conference: conference.NewHandler(app.Repo, dashboard, scores),
		team:       team.NewTeamHandler(teamService),
	}, cfg.JWTSecret, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
}
