package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/contactus/backend/internal/antispam"
	appmw "github.com/contactus/backend/internal/middleware"
	"github.com/contactus/backend/internal/model"
	"github.com/contactus/backend/internal/service"
	"github.com/contactus/backend/internal/settings"
	"github.com/labstack/echo/v4"
)

// ContactHandler serves the public contact form: the form descriptor
// (antispam question, consent label) and the submission endpoint.
type ContactHandler struct {
	svc          service.MessageService
	siteSettings settings.SiteStore
}

func NewContactHandler(svc service.MessageService, siteSettings settings.SiteStore) *ContactHandler {
	return &ContactHandler{svc: svc, siteSettings: siteSettings}
}

type FormResponse struct {
	Question     string `json:"question,omitempty"`
	ConsentLabel string `json:"consentLabel"`
}

// Form returns what a site's contact form needs to render.
func (h *ContactHandler) Form(c echo.Context) error {
	siteID, _ := strconv.ParseUint(c.QueryParam("site"), 10, 64)
	site, err := settings.LoadSite(c.Request().Context(), h.siteSettings, siteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to load form"))
	}
	resp := FormResponse{ConsentLabel: site.ConsentLabel}
	if site.Antispam {
		resp.Question = antispam.PickQuestion(site.Questions)
	}
	return c.JSON(http.StatusOK, resp)
}

type SubmitRequest struct {
	Email      string            `json:"email" form:"email"`
	Name       string            `json:"name" form:"name"`
	Subject    string            `json:"subject" form:"subject"`
	Body       string            `json:"message" form:"message"`
	Fields     map[string]string `json:"fields"`
	RequestURL string            `json:"requestUrl" form:"request_url"`
	Newsletter *bool             `json:"newsletter" form:"newsletter"`
	ResourceID *uint64           `json:"resourceId" form:"resource_id"`
	SiteID     *uint64           `json:"siteId" form:"site_id"`
	ToAuthor   bool              `json:"toAuthor" form:"to_author"`
	Consent    bool              `json:"consent" form:"consent"`
	Question   string            `json:"question" form:"question"`
	Answer     string            `json:"answer" form:"answer"`
}

type SubmitResponse struct {
	Message  MessageResponse `json:"message"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Submit accepts a contact form post, JSON or multipart with an
// optional "file" part.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req SubmitRequest
	var attachment *service.Attachment

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid form"))
		}
		if raw := c.FormValue("fields"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Fields); err != nil {
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid fields"))
			}
		}
		if fh, err := c.FormFile("file"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable file"))
			}
			defer f.Close()
			attachment = &service.Attachment{
				MediaType: fh.Header.Get("Content-Type"),
				Extension: strings.TrimPrefix(filepath.Ext(fh.Filename), "."),
				Content:   f,
			}
		}
	} else {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
		}
	}

	siteID := uint64(0)
	if req.SiteID != nil {
		siteID = *req.SiteID
	}
	site, err := settings.LoadSite(c.Request().Context(), h.siteSettings, siteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to load settings"))
	}
	if !req.Consent {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("consent_required", site.ConsentLabel))
	}
	if site.Antispam && !antispam.CheckAnswer(site.Questions, req.Question, req.Answer) {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("antispam_failed", "wrong answer to the antispam question"))
	}

	actor := appmw.ActorFrom(c)
	source, _ := json.Marshal(req)
	in := service.SubmitInput{
		Email:      req.Email,
		Name:       req.Name,
		Subject:    req.Subject,
		Body:       req.Body,
		Fields:     req.Fields,
		Source:     string(source),
		RequestURL: req.RequestURL,
		IP:         c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
		Newsletter: req.Newsletter,
		OwnerID:    actor.UserID,
		ResourceID: req.ResourceID,
		SiteID:     req.SiteID,
		ToAuthor:   req.ToAuthor,
		Attachment: attachment,
	}
	res, err := h.svc.Submit(c.Request().Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, SubmitResponse{
		Message:  toMessageResponse(res.Message),
		Warnings: res.Warnings,
	})
}

type MessageResponse struct {
	ID         uint64            `json:"id"`
	OwnerID    *uint64           `json:"ownerId,omitempty"`
	ResourceID *uint64           `json:"resourceId,omitempty"`
	SiteID     *uint64           `json:"siteId,omitempty"`
	Email      string            `json:"email"`
	Name       *string           `json:"name,omitempty"`
	Subject    *string           `json:"subject,omitempty"`
	Body       string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	MediaType  *string           `json:"mediaType,omitempty"`
	StorageID  *string           `json:"storageId,omitempty"`
	Extension  *string           `json:"extension,omitempty"`
	RequestURL *string           `json:"requestUrl,omitempty"`
	Newsletter *bool             `json:"newsletter,omitempty"`
	IsRead     bool              `json:"isRead"`
	IsSpam     bool              `json:"isSpam"`
	ToAuthor   bool              `json:"toAuthor"`
	Created    string            `json:"created"`
	Modified   *string           `json:"modified,omitempty"`
}

func toMessageResponse(m *model.ContactMessage) MessageResponse {
	resp := MessageResponse{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		ResourceID: m.ResourceID,
		SiteID:     m.SiteID,
		Email:      m.Email,
		Name:       m.Name,
		Subject:    m.Subject,
		Body:       m.Body,
		MediaType:  m.MediaType,
		StorageID:  m.StorageID,
		Extension:  m.Extension,
		RequestURL: m.RequestURL,
		Newsletter: m.Newsletter,
		IsRead:     m.IsRead,
		IsSpam:     m.IsSpam,
		ToAuthor:   m.ToAuthor,
		Created:    m.Created.Format(time.RFC3339),
	}
	if len(m.Fields) > 0 {
		if err := json.Unmarshal(m.Fields, &resp.Fields); err != nil {
			log.Printf("message %d: undecodable fields column: %v", m.ID, err)
		}
	}
	if m.Modified != nil {
		v := m.Modified.Format(time.RFC3339)
		resp.Modified = &v
	}
	return resp
}
