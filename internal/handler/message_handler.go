package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	appmw "github.com/contactus/backend/internal/middleware"
	"github.com/contactus/backend/internal/model"
	"github.com/contactus/backend/internal/repository"
	"github.com/contactus/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MessageHandler serves message browsing and moderation. Admin routes
// are gated by RequireAdmin in the router; ownership narrowing for
// visitor routes happens in the service.
type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}

// ListMine returns the caller's own messages.
func (h *MessageHandler) ListMine(c echo.Context) error {
	actor := appmw.ActorFrom(c)
	f := repository.MessageFilter{}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	msgs, total, err := h.svc.Search(c.Request().Context(), f, actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toListResponse(msgs, total))
}

// List is the administrative browse with the full filter surface.
func (h *MessageHandler) List(c echo.Context) error {
	actor := appmw.ActorFrom(c)
	f := repository.MessageFilter{Email: c.QueryParam("email")}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if v, err := strconv.ParseUint(c.QueryParam("owner"), 10, 64); err == nil {
		f.OwnerID = &v
	}
	if v, err := strconv.ParseUint(c.QueryParam("resource"), 10, 64); err == nil {
		f.ResourceID = &v
	}
	if v, err := strconv.ParseUint(c.QueryParam("site"), 10, 64); err == nil {
		f.SiteID = &v
	}
	for param, dst := range map[string]**bool{
		"read":      &f.IsRead,
		"spam":      &f.IsSpam,
		"to_author": &f.ToAuthor,
	} {
		if v, err := strconv.ParseBool(c.QueryParam(param)); err == nil {
			b := v
			*dst = &b
		}
	}
	if v, err := time.Parse(time.RFC3339, c.QueryParam("since")); err == nil {
		f.CreatedAfter = &v
	}
	if v, err := time.Parse(time.RFC3339, c.QueryParam("until")); err == nil {
		f.CreatedBefore = &v
	}
	msgs, total, err := h.svc.Search(c.Request().Context(), f, actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toListResponse(msgs, total))
}

func (h *MessageHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	msg, err := h.svc.Get(c.Request().Context(), id, appmw.ActorFrom(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	return h.mark(c, h.svc.MarkRead)
}

func (h *MessageHandler) MarkSpam(c echo.Context) error {
	return h.mark(c, h.svc.MarkSpam)
}

func (h *MessageHandler) mark(c echo.Context, fn func(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error)) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	msg, err := fn(c.Request().Context(), id, appmw.ActorFrom(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

type PurgeResponse struct {
	Deleted int `json:"deleted"`
}

// Purge deletes messages older than the given number of days,
// optionally only those carrying an attachment.
func (h *MessageHandler) Purge(c echo.Context) error {
	days, err := strconv.Atoi(c.QueryParam("older_than_days"))
	if err != nil || days < 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "older_than_days is required"))
	}
	onlyWithAttachment, _ := strconv.ParseBool(c.QueryParam("only_with_attachment"))
	deleted, err := h.svc.Purge(c.Request().Context(), time.Duration(days)*24*time.Hour, onlyWithAttachment, appmw.ActorFrom(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, PurgeResponse{Deleted: deleted})
}

func toListResponse(msgs []model.ContactMessage, total int64) MessageListResponse {
	resp := MessageListResponse{
		Messages: make([]MessageResponse, 0, len(msgs)),
		Total:    total,
	}
	for i := range msgs {
		resp.Messages = append(resp.Messages, toMessageResponse(&msgs[i]))
	}
	return resp
}
