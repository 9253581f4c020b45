package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"

	"bacheliers/config"
	"bacheliers/internal/models"
	"bacheliers/internal/repository"
	"bacheliers/internal/service"
	"bacheliers/pkg/payment"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type PaymentWebhookHandler struct {
	reconciler *service.Reconciler
	cfg        *config.PaymentConfig
}

func NewPaymentWebhookHandler(reconciler *service.Reconciler, cfg *config.PaymentConfig) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{reconciler: reconciler, cfg: cfg}
}

// Handle receives one gateway notification. The gateway is taken from the :gateway path
// parameter, or the configured default on the bare route. Answers 400 on missing fields,
// 404 when no registration matches, 500 on store errors (the gateway redelivers) and 200 otherwise.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	gateway := c.Param("gateway")
	if gateway == "" {
		gateway = h.cfg.WebhookGateway
	}
	adapter, ok := payment.WebhookAdapterFor(gateway)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown gateway"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.WebhookSecret != "" {
		sig := c.GetHeader("X-Webhook-Signature")
		if !h.verifySignature(body, sig) {
			log.Printf("[WEBHOOK] %s: invalid signature from %s", adapter.Name(), c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}
	log.Printf("[WEBHOOK] %s received: %s", adapter.Name(), string(body))

	event := &models.PaymentEvent{
		Gateway:   adapter.Name(),
		Outcome:   models.EventReceived,
		Payload:   string(body),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	defer h.reconciler.LogDelivery(c.Request.Context(), event)

	n, err := adapter.Parse(body, c.ContentType())
	if n != nil {
		event.TransactionRef = n.TransactionRef
		event.StatusCode = n.StatusCode
		event.CorrelationID = n.CorrelationID
	}
	if errors.Is(err, payment.ErrNonTerminal) {
		event.Outcome = models.EventIgnored
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		log.Printf("[WEBHOOK] %s: %v", adapter.Name(), err)
		event.Outcome = models.EventFailed
		event.Error = err.Error()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook data"})
		return
	}

	res, err := h.reconciler.Reconcile(c.Request.Context(), *n)
	if err != nil {
		event.Outcome = models.EventFailed
		event.Error = err.Error()
		if errors.Is(err, repository.ErrNotFound) {
			event.Outcome = models.EventIgnored
		}
		respondError(c, "WEBHOOK", err)
		return
	}
	event.Outcome = models.EventProcessed
	event.Identity = res.Identity
	event.PaymentStatus = res.PaymentStatus
	c.JSON(http.StatusOK, gin.H{"received": true, "payment_status": res.PaymentStatus})
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
