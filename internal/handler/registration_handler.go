package handler

import (
	"net/http"
	"strings"

	"bacheliers/internal/middleware"
	"bacheliers/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	regs     *service.RegistrationService
	notifSvc *service.NotificationService
}

func NewRegistrationHandler(regs *service.RegistrationService, notifSvc *service.NotificationService) *RegistrationHandler {
	return &RegistrationHandler{regs: regs, notifSvc: notifSvc}
}

// SendPreliminary e-mails the "personal info received" confirmation.
func (h *RegistrationHandler) SendPreliminary(c *gin.Context) {
	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Surname) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields (email, name, surname)"})
		return
	}
	res := h.notifSvc.SendPreliminary(c.Request.Context(), req.Email, strings.TrimSpace(req.Name))
	if !res.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send confirmation email", "reason": res.Reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "confirmation email sent"})
}

// Get returns the caller's record to pre-fill the forms.
func (h *RegistrationHandler) Get(c *gin.Context) {
	r, err := h.regs.GetRegistration(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, "REGISTRATION", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Save stores the personal info form.
func (h *RegistrationHandler) Save(c *gin.Context) {
	var req service.PersonalInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		req.Email = middleware.GetEmail(c)
	}
	view, err := h.regs.StartRegistration(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		respondError(c, "REGISTRATION", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Complete stores the ticket form without calling a gateway; the payment is verified by hand
// or by a later webhook.
func (h *RegistrationHandler) Complete(c *gin.Context) {
	var req service.TicketChoice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	view, err := h.regs.CompleteRegistration(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		respondError(c, "REGISTRATION", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RegistrationHandler) Status(c *gin.Context) {
	view, err := h.regs.ReadStatus(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, "REGISTRATION", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Snapshot feeds the status stream with the caller's current status on connect.
func (h *RegistrationHandler) Snapshot(c *gin.Context, identity string) interface{} {
	view, err := h.regs.ReadStatus(c.Request.Context(), identity)
	if err != nil {
		return nil
	}
	return service.StatusEvent{
		Type:               "payment_status",
		RegistrationStatus: view.RegistrationStatus,
		PaymentStatus:      view.PaymentStatus,
		TransactionRef:     view.TransactionRef,
	}
}
