package service

import (
	"context"
	"log"

	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/mail"
	"github.com/contactus/backend/internal/model"
	"github.com/contactus/backend/internal/repository"
	"github.com/contactus/backend/internal/settings"
)

// NotifyService turns "message created" events into notification,
// confirmation and to-author emails. Delivery failures are logged and
// swallowed: the persisted message is the source of truth and a broken
// relay must not surface as a submission error.
type NotifyService struct {
	global    settings.Store
	sites     settings.SiteStore
	mailer    mail.Mailer
	authors   repository.AuthorRepository
	siteRepo  repository.SiteRepository
	mainTitle string
	mainURL   string
}

func NewNotifyService(global settings.Store, sites settings.SiteStore, mailer mail.Mailer, authors repository.AuthorRepository, siteRepo repository.SiteRepository, mainTitle, mainURL string) *NotifyService {
	return &NotifyService{
		global:    global,
		sites:     sites,
		mailer:    mailer,
		authors:   authors,
		siteRepo:  siteRepo,
		mainTitle: mainTitle,
		mainURL:   mainURL,
	}
}

// Register subscribes the service to the event bus.
func (s *NotifyService) Register(bus *event.Bus) {
	bus.Subscribe(func(ctx context.Context, ev any) {
		if created, ok := ev.(event.MessageCreated); ok {
			s.HandleMessageCreated(ctx, created)
		}
	})
}

func (s *NotifyService) HandleMessageCreated(ctx context.Context, ev event.MessageCreated) {
	msg := ev.Message

	global, err := settings.LoadGlobal(ctx, s.global)
	if err != nil {
		log.Printf("notify: load settings: %v", err)
		return
	}
	site, err := settings.LoadSite(ctx, s.sites, ev.SiteID)
	if err != nil {
		log.Printf("notify: load site settings: %v", err)
		return
	}

	ph := s.placeholders(ctx, msg, ev.SiteID)

	recipients := site.NotifyRecipients
	if len(recipients) == 0 {
		recipients = global.NotifyRecipients
	}
	sender := ""
	if len(recipients) > 0 {
		sender = recipients[0]
	}
	if global.SendWithUserEmail {
		sender = msg.Email
	}

	// To the resource author, when the form asked for it and the
	// feature is enabled.
	sentToAuthor := false
	if msg.ToAuthor && global.Author != "disabled" && msg.ResourceID != nil {
		author, err := s.authors.FindResourceAuthor(ctx, *msg.ResourceID)
		if err != nil {
			log.Printf("notify: resolve author for resource %d: %v", *msg.ResourceID, err)
		} else if author != nil {
			authorPh := ph
			authorPh.UserName = author.Name
			s.send(ctx, mail.Message{
				From:    sender,
				To:      []string{author.Email},
				ReplyTo: msg.Email,
				Subject: mail.Render(site.ToAuthorSubject, authorPh),
				Body:    mail.Render(site.ToAuthorBody, authorPh),
			})
			sentToAuthor = true
		}
	}

	// To the administrators, unless author-only routing applied.
	if len(recipients) > 0 && !(sentToAuthor && global.AuthorOnly) {
		subject := site.NotifySubject
		if subject == "" {
			subject = "[Contact] " + ph.Subject
		}
		s.send(ctx, mail.Message{
			From:    sender,
			To:      recipients,
			ReplyTo: msg.Email,
			Subject: mail.Render(subject, ph),
			Body:    mail.Render(site.NotifyBody, ph),
		})
	}

	// Back to the visitor.
	if site.ConfirmationEnabled {
		s.send(ctx, mail.Message{
			From:    sender,
			To:      []string{msg.Email},
			Subject: mail.Render(site.ConfirmationSubject, ph),
			Body:    mail.Render(site.ConfirmationBody, ph),
		})
	}
	if msg.Newsletter != nil && *msg.Newsletter {
		s.send(ctx, mail.Message{
			From:    sender,
			To:      []string{msg.Email},
			Subject: mail.Render(site.ConfirmationNewsletterSubject, ph),
			Body:    mail.Render(site.ConfirmationNewsletterBody, ph),
		})
	}
}

func (s *NotifyService) placeholders(ctx context.Context, msg *model.ContactMessage, siteID uint64) mail.Placeholders {
	ph := mail.Placeholders{
		Email:     msg.Email,
		IP:        msg.IP,
		Message:   msg.Body,
		MainTitle: s.mainTitle,
		MainURL:   s.mainURL,
		SiteTitle: s.mainTitle,
		SiteURL:   s.mainURL,
	}
	if msg.Name != nil {
		ph.Name = *msg.Name
	}
	if msg.Subject != nil {
		ph.Subject = *msg.Subject
	}
	if msg.RequestURL != nil {
		ph.Object = *msg.RequestURL
	}
	switch {
	case msg.Newsletter == nil:
	case *msg.Newsletter:
		ph.Newsletter = "newsletter: yes"
	default:
		ph.Newsletter = "newsletter: no"
	}
	if siteID != 0 && s.siteRepo != nil {
		if site, err := s.siteRepo.FindByID(ctx, siteID); err != nil {
			log.Printf("notify: load site %d: %v", siteID, err)
		} else if site != nil {
			ph.SiteTitle = site.Title
			ph.SiteURL = s.mainURL + "/s/" + site.Slug
		}
	}
	return ph
}

func (s *NotifyService) send(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("notify: send to %v failed: %v", msg.To, err)
	}
}
