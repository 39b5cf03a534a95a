package main

import (
	"context"
	"log"

	"github.com/contactus/backend/internal/antispam"
	"github.com/contactus/backend/internal/config"
	"github.com/contactus/backend/internal/db"
	"github.com/contactus/backend/internal/mail"
	"github.com/contactus/backend/internal/migrate"
	"github.com/contactus/backend/internal/server"
	"github.com/contactus/backend/internal/service"
	"github.com/contactus/backend/internal/settings"
	"github.com/contactus/backend/internal/storage"
	"github.com/joho/godotenv"
)

// Set via -ldflags at build time.
var (
	sha       = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	env := &migrate.Env{
		DB:           conn,
		Settings:     settings.NewStore(conn),
		SiteSettings: settings.NewSiteStore(conn),
	}
	notices, err := migrate.Run(ctx, env, cfg.ModuleVersion)
	for _, notice := range notices {
		log.Printf("upgrade: %s", notice)
	}
	if err != nil {
		log.Fatalf("migration error: %v", err)
	}

	var files storage.FileStore
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.StorageBucket, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatalf("gcs init error: %v", err)
		}
		defer gcs.Close()
		files = gcs
	} else {
		files = storage.NewLocalStore(cfg.FilesBasePath)
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Printf("SMTP_HOST not set; outgoing mail is logged only")
		mailer = &mail.LogMailer{Logf: log.Printf}
	}

	var scorer service.SpamScorer
	if cfg.SpamCheckEnabled {
		scorer = antispam.NewSpamClient(cfg.GeminiModel)
	}

	srv := server.New(server.Deps{
		DB:        conn,
		Files:     files,
		Mailer:    mailer,
		Packager:  storage.NewPackager(files, cfg.FilesBasePath),
		Scorer:    scorer,
		MainTitle: cfg.MainTitle,
		MainURL:   cfg.MainURL,
		SHA:       sha,
		BuildTime: buildTime,
	})

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
