package handler

import (
	"log"
	"net/http"
	"strings"

	"bacheliers/internal/middleware"
	"bacheliers/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Initiate completes the registration and asks the gateway to collect the ticket price.
// A gateway rejection is answered with 200 and success=false.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req service.PaymentInitiation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		req.Email = middleware.GetEmail(c)
	}
	res, err := h.payments.Initiate(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		if res != nil {
			log.Printf("[PAYMENT] initiate identity=%s: %v", middleware.GetIdentity(c), err)
			c.JSON(http.StatusInternalServerError, res)
			return
		}
		respondError(c, "PAYMENT", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
