package handler

import (
	"net/http"
	"os"
	"strconv"

	appmw "github.com/contactus/backend/internal/middleware"
	"github.com/contactus/backend/internal/service"
	"github.com/contactus/backend/internal/settings"
	"github.com/contactus/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// ZipHandler packages one message's attachment for download and serves
// the packages. Downloads are unauthenticated: package names are
// unguessable storage identifiers, and the link is mailed to visitors.
type ZipHandler struct {
	svc      service.MessageService
	packager *storage.Packager
	global   settings.Store
}

func NewZipHandler(svc service.MessageService, packager *storage.Packager, global settings.Store) *ZipHandler {
	return &ZipHandler{svc: svc, packager: packager, global: global}
}

type ZipResponse struct {
	Zip string `json:"zip"`
	URL string `json:"url"`
}

// Create builds the zip package for a message's attachment at the
// configured derivative size.
func (h *ZipHandler) Create(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	msg, err := h.svc.Get(c.Request().Context(), id, appmw.ActorFrom(c))
	if err != nil {
		return serviceError(c, err)
	}
	if !msg.HasAttachment() {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "message has no attachment"))
	}

	global, err := settings.LoadGlobal(c.Request().Context(), h.global)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to load settings"))
	}
	mode := storage.ParseDerivative(global.CreateZip)
	zipName, err := h.packager.Package(c.Request().Context(), msg.Filename(), mode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to build package"))
	}
	return c.JSON(http.StatusOK, ZipResponse{
		Zip: zipName,
		URL: "/files/zip/" + zipName,
	})
}

// Download streams a previously built package.
func (h *ZipHandler) Download(c echo.Context) error {
	f, err := h.packager.Open(c.Param("name"))
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "package not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to open package"))
	}
	defer f.Close()
	return c.Stream(http.StatusOK, "application/zip", f)
}
