package httpgin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service/orders"
)

// @Summary  Book tickets in a zone of a fixture
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replays the first response for a repeated key"
// @Param    req body  CreateOrderRequest true "payload"
// @Success  201 {object} domain.Order
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Failure  422 {object} ErrorResponse "idempotency key reused with another request"
// @Failure  429 {object} ErrorResponse
// @Router   /orders [post]
func handleCreateOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		audienceID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		idemKey := c.GetHeader("Idempotency-Key")

		var key, fingerprint string
		if d.Idem != nil && idemKey != "" {
			key = redisrepo.KeyIdemOrder(audienceID, idemKey)
			fingerprint = requestFingerprint(req)

			state, payload, err := d.Idem.Begin(ctx, key, fingerprint, d.IdemLockTTL)
			switch {
			case err != nil:
				// redis down: book without replay protection
				d.Logger.Warn("idempotency store unavailable", slog.Any("err", err))
				key = ""
			case state == redisrepo.IdemReplay:
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			case state == redisrepo.IdemInFlight:
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "request with this idempotency key is in progress"})
				return
			case state == redisrepo.IdemMismatch:
				c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "idempotency key was used with a different request"})
				return
			}
		}

		order, err := d.Services.Orders.CreateOrder(ctx, orders.CreateOrderInput{
			AudienceID:  audienceID,
			FixtureID:   req.FixtureID,
			ZoneID:      req.ZoneID,
			NoOfTickets: req.NoOfTickets,
		})
		if err != nil {
			if key != "" {
				releaseIdem(d, key)
			}
			respondErr(c, err)
			return
		}

		if key != "" {
			b, err := json.Marshal(order)
			if err == nil {
				err = d.Idem.SaveResult(ctx, key, fingerprint, string(b))
			}
			if err != nil {
				d.Logger.Warn("save idempotent result", slog.String("key", key), slog.Any("err", err))
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, order)
	}
}

// requestFingerprint hashes the bound request, so the same order sent with
// different JSON formatting still matches its key.
func requestFingerprint(req CreateOrderRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// releaseIdem runs on a fresh context so a cancelled request still frees its
// key.
func releaseIdem(d Deps, key string) {
	if err := d.Idem.Release(context.Background(), key); err != nil {
		d.Logger.Warn("release idempotency key", slog.String("key", key), slog.Any("err", err))
	}
}

// @Summary  List the caller's orders
// @Security BearerAuth
// @Success  200 {array} domain.OrderView
// @Router   /me/orders [get]
func handleListMyOrders(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		audienceID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		views, err := d.Services.Query.ListAudienceOrders(c.Request.Context(), audienceID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

// @Summary  List the caller's payments
// @Security BearerAuth
// @Success  200 {array} domain.PaymentView
// @Router   /me/payments [get]
func handleListMyPayments(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		audienceID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		views, err := d.Services.Query.ListAudiencePayments(c.Request.Context(), audienceID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

// @Summary  Cancel one of the caller's orders
// @Security BearerAuth
// @Param    id path string true "order id"
// @Success  200 {object} domain.Order
// @Failure  404 {object} ErrorResponse
// @Router   /me/orders/{id}/cancel [post]
func handleCancelMyOrder(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		audienceID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		order, err := d.Services.Orders.CancelAudienceOrder(c.Request.Context(), audienceID, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// @Summary  Download the e-ticket PDF of an active order
// @Security BearerAuth
// @Produce  application/pdf
// @Param    id path string true "order id"
// @Success  200 {file} file
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "order is not active"
// @Router   /me/orders/{id}/eticket [get]
func handleETicket(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		audienceID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		pdf, err := d.Services.Query.ETicket(c.Request.Context(), audienceID, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="eticket-`+orderID.String()+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
