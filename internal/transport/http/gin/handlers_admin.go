package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/matchday/internal/service/catalog"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
)

// --- Teams ---

// @Summary  List teams
// @Security BearerAuth
// @Success  200 {array} domain.Team
// @Router   /admin/teams [get]
func handleListTeams(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := d.Services.Catalog.ListTeams(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, teams)
	}
}

// @Summary  Create a team
// @Security BearerAuth
// @Param    req body  TeamRequest true "payload"
// @Success  201 {object} domain.Team
// @Failure  409 {object} ErrorResponse "abbreviation taken"
// @Router   /admin/teams [post]
func handleCreateTeam(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		team, err := d.Services.Catalog.CreateTeam(c.Request.Context(), catalog.TeamInput{
			Name: req.Name,
			Abbr: req.Abbr,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, team)
	}
}

// @Summary  Update a team
// @Security BearerAuth
// @Param    id  path  string      true "team id"
// @Param    req body  TeamRequest true "payload"
// @Success  200 {object} domain.Team
// @Failure  404 {object} ErrorResponse
// @Router   /admin/teams/{id} [put]
func handleUpdateTeam(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req TeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		team, err := d.Services.Catalog.UpdateTeam(c.Request.Context(), id, catalog.TeamInput{
			Name: req.Name,
			Abbr: req.Abbr,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, team)
	}
}

// --- Stadiums and zones ---

// @Summary  List stadiums with their zones
// @Security BearerAuth
// @Success  200 {array} domain.Stadium
// @Router   /admin/stadiums [get]
func handleListStadiums(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stadiums, err := d.Services.Catalog.ListStadiums(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, stadiums)
	}
}

// @Summary  Get a stadium with its zones
// @Security BearerAuth
// @Param    id path string true "stadium id"
// @Success  200 {object} domain.Stadium
// @Failure  404 {object} ErrorResponse
// @Router   /admin/stadiums/{id} [get]
func handleGetStadium(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		stadium, err := d.Services.Catalog.GetStadium(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, stadium)
	}
}

// @Summary  Create a stadium
// @Security BearerAuth
// @Param    req body  StadiumRequest true "payload"
// @Success  201 {object} domain.Stadium
// @Failure  409 {object} ErrorResponse "abbreviation taken"
// @Router   /admin/stadiums [post]
func handleCreateStadium(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StadiumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		stadium, err := d.Services.Catalog.CreateStadium(c.Request.Context(), catalog.StadiumInput{
			Name: req.Name,
			Abbr: req.Abbr,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, stadium)
	}
}

// @Summary  Update a stadium
// @Security BearerAuth
// @Param    id  path  string         true "stadium id"
// @Param    req body  StadiumRequest true "payload"
// @Success  200 {object} domain.Stadium
// @Router   /admin/stadiums/{id} [put]
func handleUpdateStadium(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req StadiumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		stadium, err := d.Services.Catalog.UpdateStadium(c.Request.Context(), id, catalog.StadiumInput{
			Name: req.Name,
			Abbr: req.Abbr,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, stadium)
	}
}

// @Summary  Add a seating zone to a stadium
// @Security BearerAuth
// @Param    id  path  string      true "stadium id"
// @Param    req body  ZoneRequest true "payload"
// @Success  201 {object} domain.Zone
// @Router   /admin/stadiums/{id}/zones [post]
func handleCreateZone(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stadiumID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req ZoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		zone, err := d.Services.Catalog.CreateZone(c.Request.Context(), stadiumID, catalog.ZoneInput(req))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, zone)
	}
}

// @Summary  Update a seating zone
// @Security BearerAuth
// @Param    id  path  string      true "zone id"
// @Param    req body  ZoneRequest true "payload"
// @Success  200 {object} domain.Zone
// @Router   /admin/zones/{id} [put]
func handleUpdateZone(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		zoneID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req ZoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		zone, err := d.Services.Catalog.UpdateZone(c.Request.Context(), zoneID, catalog.ZoneInput(req))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, zone)
	}
}

// --- Fixtures ---

// @Summary  Schedule a fixture
// @Security BearerAuth
// @Param    req body  FixtureRequest true "payload"
// @Success  201 {object} domain.Fixture
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ConflictResponse "schedule conflict"
// @Router   /admin/fixtures [post]
func handleCreateFixture(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FixtureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		fields, err := req.fields()
		if err != nil {
			badRequest(c, "invalid date")
			return
		}

		fixture, err := d.Services.Fixtures.Save(c.Request.Context(), fixtures.Create{Fields: fields})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, fixture)
	}
}

// @Summary  Reschedule a fixture
// @Security BearerAuth
// @Param    id  path  string         true "fixture id"
// @Param    req body  FixtureRequest true "payload"
// @Success  200 {object} domain.Fixture
// @Failure  409 {object} ConflictResponse "schedule conflict"
// @Router   /admin/fixtures/{id} [put]
func handleUpdateFixture(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req FixtureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		fields, err := req.fields()
		if err != nil {
			badRequest(c, "invalid date")
			return
		}

		fixture, err := d.Services.Fixtures.Save(c.Request.Context(), fixtures.Update{ID: id, Fields: fields})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, fixture)
	}
}

// @Summary  Check a proposed slot for conflicts without saving
// @Security BearerAuth
// @Param    req body  CheckFixtureRequest true "payload"
// @Success  200 {object} CheckFixtureResponse
// @Failure  400 {object} ErrorResponse
// @Router   /admin/fixtures/check [post]
func handleCheckFixture(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckFixtureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		fields, err := req.fields()
		if err != nil {
			badRequest(c, "invalid date")
			return
		}

		conflict, err := d.Services.Fixtures.Check(c.Request.Context(), fields, req.ExcludeID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, checkResponse(conflict))
	}
}

// @Summary  Cancel a fixture and every order placed for it
// @Security BearerAuth
// @Param    id path string true "fixture id"
// @Success  200 {object} CancelFixtureResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/fixtures/{id}/cancel [post]
func handleCancelFixture(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		fixture, n, err := d.Services.Fixtures.Cancel(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, CancelFixtureResponse{Fixture: fixture, CancelledOrders: n})
	}
}

// --- Orders ---

// @Summary  List all orders
// @Security BearerAuth
// @Success  200 {array} domain.OrderView
// @Router   /admin/orders [get]
func handleListOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := d.Services.Query.ListOrders(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

// @Summary  Cancel an order
// @Security BearerAuth
// @Param    id  path  string             true  "order id"
// @Param    req body  CancelOrderRequest false "reason, CANCELLED_BY_ADMIN when empty"
// @Success  200 {object} domain.Order
// @Failure  400 {object} ErrorResponse "reason is not a cancellation status"
// @Failure  404 {object} ErrorResponse
// @Router   /admin/orders/{id}/cancel [post]
func handleCancelOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req CancelOrderRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		order, err := d.Services.Orders.CancelOrder(c.Request.Context(), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
