package httpgin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/eticket"
	"github.com/kirinyoku/matchday/internal/service/catalog"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
	"github.com/kirinyoku/matchday/internal/service/orders"
	"github.com/kirinyoku/matchday/internal/service/query"
	"github.com/kirinyoku/matchday/internal/service/users"
)

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var conflict *domain.ConflictError

	switch {
	// schedule clash carries the kind and the fixture it clashes with
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ConflictResponse{
			Error:     conflict.Error(),
			Kind:      conflict.Kind,
			FixtureID: conflict.FixtureID,
		})

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, orders.ErrInvalidReason),
		errors.Is(err, orders.ErrZoneNotInStadium):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})

	// not found
	case errors.Is(err, orders.ErrFixtureNotFound),
		errors.Is(err, fixtures.ErrFixtureNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "fixture not found"})
	case errors.Is(err, orders.ErrZoneNotFound),
		errors.Is(err, catalog.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "zone not found"})
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, query.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, fixtures.ErrTeamNotFound),
		errors.Is(err, catalog.ErrTeamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "team not found"})
	case errors.Is(err, fixtures.ErrStadiumNotFound),
		errors.Is(err, catalog.ErrStadiumNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "stadium not found"})
	case errors.Is(err, users.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})

	// state conflicts
	case errors.Is(err, orders.ErrFixtureCancelled),
		errors.Is(err, fixtures.ErrFixtureCancelled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "fixture is cancelled"})
	case errors.Is(err, orders.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, orders.ErrSeatAlreadyIssued):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats could not be allocated, retry"})
	case errors.Is(err, domain.ErrInvalidSeatLabel):
		_ = c.Error(err)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "zone holds a seat without a numeric label"})
	case errors.Is(err, catalog.ErrTeamConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "team abbreviation already in use"})
	case errors.Is(err, catalog.ErrStadiumConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "stadium abbreviation already in use"})
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
	case errors.Is(err, eticket.ErrNotPrintable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order is not active"})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
