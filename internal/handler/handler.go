package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"repairshop-service/internal/store"
)

// repo is the store all handlers go through, set once at startup
var repo *store.Store

// Init wires the handler package to the lifecycle store
func Init(s *store.Store) {
	repo = s
}

// pathID parses the :id route parameter
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// mapStoreError translates store errors shared by create/update paths:
// a rejected parent reference is the client's fault, everything else is ours.
func mapStoreError(c echo.Context, err error, entity string) error {
	if errors.Is(err, store.ErrInvalidReference) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save " + entity})
}

// Health reports service liveness and database connectivity
func Health(c echo.Context) error {
	if repo != nil {
		if err := repo.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": "database unreachable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
