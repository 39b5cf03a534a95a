// Command sweep-zips deletes attachment packages older than the
// configured retention window. Run it from cron.
package main

import (
	"context"
	"log"
	"time"

	"github.com/contactus/backend/internal/config"
	"github.com/contactus/backend/internal/db"
	"github.com/contactus/backend/internal/settings"
	"github.com/contactus/backend/internal/storage"
	"github.com/joho/godotenv"
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

	global, err := settings.LoadGlobal(ctx, settings.NewStore(conn))
	if err != nil {
		log.Fatalf("settings load error: %v", err)
	}

	// The sweep only touches local zip files, so the attachment backend
	// does not matter here.
	packager := storage.NewPackager(storage.NewLocalStore(cfg.FilesBasePath), cfg.FilesBasePath)
	removed, err := packager.Sweep(global.DeleteZip, time.Now())
	if err != nil {
		log.Fatalf("sweep error: %v", err)
	}
	log.Printf("removed %d expired packages (retention %d days)", removed, global.DeleteZip)
}
