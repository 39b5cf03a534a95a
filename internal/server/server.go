package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/handler"
	"github.com/contactus/backend/internal/mail"
	appmw "github.com/contactus/backend/internal/middleware"
	"github.com/contactus/backend/internal/repository"
	"github.com/contactus/backend/internal/service"
	"github.com/contactus/backend/internal/settings"
	"github.com/contactus/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the server wires together.
type Deps struct {
	DB        *gorm.DB
	Files     storage.FileStore
	Mailer    mail.Mailer
	Packager  *storage.Packager
	Scorer    service.SpamScorer // nil disables the Gemini spam check
	MainTitle string
	MainURL   string
	SHA       string
	BuildTime string
}

type Server struct {
	e        *echo.Echo
	msgRepo  repository.MessageRepository
	siteRepo repository.SiteRepository
}

func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if deps.MainURL != "" {
				if mu, err := url.Parse(deps.MainURL); err == nil && u.Hostname() == mu.Hostname() {
					return true, nil
				}
			}
			return false, nil
		},
	}))

	globalSettings := settings.NewStore(deps.DB)
	siteSettings := settings.NewSiteStore(deps.DB)

	msgRepo := repository.NewMessageRepository(deps.DB)
	authorRepo := repository.NewAuthorRepository(deps.DB)
	siteRepo := repository.NewSiteRepository(deps.DB)

	bus := event.NewBus()
	msgSvc := service.NewMessageService(msgRepo, deps.Files, bus)

	notifySvc := service.NewNotifyService(globalSettings, siteSettings, deps.Mailer, authorRepo, siteRepo, deps.MainTitle, deps.MainURL)
	notifySvc.Register(bus)
	if deps.Scorer != nil {
		service.NewSpamModerator(msgRepo, deps.Scorer).Register(bus)
	}

	contactHandler := handler.NewContactHandler(msgSvc, siteSettings)
	msgHandler := handler.NewMessageHandler(msgSvc)
	zipHandler := handler.NewZipHandler(msgSvc, deps.Packager, globalSettings)

	// Admin routes must never be reachable without verified tokens, so a
	// broken auth setup stops the server instead of opening it up.
	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		log.Fatalf("failed to init auth middleware: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    deps.SHA,
			"build_time": deps.BuildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/contact/form", contactHandler.Form)
	api.POST("/contact", contactHandler.Submit, authMw.Resolve)
	api.GET("/me/messages", msgHandler.ListMine, authMw.RequireAuth)
	api.GET("/me/messages/:id", msgHandler.Get, authMw.RequireAuth)

	admin := api.Group("/admin", authMw.RequireAdmin)
	admin.GET("/messages", msgHandler.List)
	admin.GET("/messages/:id", msgHandler.Get)
	admin.POST("/messages/:id/read", msgHandler.MarkRead)
	admin.POST("/messages/:id/spam", msgHandler.MarkSpam)
	admin.DELETE("/messages", msgHandler.Purge)
	admin.POST("/messages/:id/zip", zipHandler.Create)
	e.GET("/files/zip/:name", zipHandler.Download)

	return &Server{e: e, msgRepo: msgRepo, siteRepo: siteRepo}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.msgRepo != nil {
		s.msgRepo.SetDB(db)
	}
	if s.siteRepo != nil {
		s.siteRepo.SetDB(db)
	}
}
