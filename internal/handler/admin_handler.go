package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/export"
	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles directory maintenance for administrators.
type AdminHandler struct {
	service *service.DirectoryService
}

// NewAdminHandler wires a handler backed by the directory service.
func NewAdminHandler(service *service.DirectoryService) *AdminHandler {
	return &AdminHandler{service: service}
}

// UploadCSV handles POST /admin/upload-csv requests.
func (h *AdminHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.service.ImportCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "businesses CSV processed", summary)
}

// Refresh handles POST /admin/refresh requests.
func (h *AdminHandler) Refresh(c echo.Context) error {
	summary, err := h.service.Refresh(c.Request().Context())
	if err != nil {
		if errors.Is(err, service.ErrSourceNotConfigured) {
			return Error(c, http.StatusServiceUnavailable, "sheet source is not configured")
		}
		return Error(c, http.StatusInternalServerError, "failed to refresh businesses")
	}

	if summary.SourceError != "" {
		return Fail(c, http.StatusBadGateway, "sheet fetch failed, previous snapshot kept", summary)
	}
	return Success(c, http.StatusOK, "businesses refreshed", summary)
}

// Export handles GET /admin/businesses.xlsx requests.
func (h *AdminHandler) Export(c echo.Context) error {
	businesses, err := h.service.All(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load businesses")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, xlsxContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="businesses.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteBusinesses(res, businesses); err != nil {
		c.Logger().Errorf("export businesses: %v", err)
		return err
	}
	return nil
}
