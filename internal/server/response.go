package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError is the error body for every failed request.
type APIError struct {
	Detail string `json:"detail"`
	Path   string `json:"path"`
	Status int    `json:"status"`
}

func pathFromContext(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

func fail(c echo.Context, status int, detail string) error {
	return c.JSON(status, APIError{
		Detail: detail,
		Path:   pathFromContext(c),
		Status: status,
	})
}

func badRequest(c echo.Context, detail string) error {
	return fail(c, http.StatusBadRequest, detail)
}

func notFound(c echo.Context, detail string) error {
	return fail(c, http.StatusNotFound, detail)
}

func internalError(c echo.Context, detail string) error {
	return fail(c, http.StatusInternalServerError, detail)
}
