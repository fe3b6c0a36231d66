package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

type AuthController struct {
	Svc     *services.IdentityService
	Webhook *svix.Webhook
	Log     *zap.Logger
}

func NewAuthController(s *services.IdentityService, wh *svix.Webhook, log *zap.Logger) *AuthController {
	return &AuthController{Svc: s, Webhook: wh, Log: log}
}

type meOut struct {
	ID           uint   `json:"id"`
	ExternalID   string `json:"externalId"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
	Role         string `json:"role"`
}

// GET /users/me
func (h *AuthController) Me(c *gin.Context) {
	ext, _ := c.Get(utils.CtxExternalID)
	extID, _ := ext.(string)
	u, err := h.Svc.ResolveUser(c.Request.Context(), extID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, meOut{
		ID: u.ID, ExternalID: u.ExternalID, FullName: u.FullName,
		Email: u.Email, ProfileImage: u.ProfileImage, Role: u.Role,
	})
}

// POST /webhooks/clerk
// Verified with the svix-id / svix-timestamp / svix-signature headers.
func (h *AuthController) IdentityWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		resp.BadRequest(c, "cannot read body")
		return
	}
	if err := h.Webhook.Verify(payload, c.Request.Header); err != nil {
		h.Log.Warn("identity webhook rejected", zap.Error(err))
		resp.BadRequest(c, "webhook signature verification failed")
		return
	}

	var ev services.IdentityEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		resp.BadRequest(c, "invalid event body")
		return
	}
	if err := h.Svc.HandleEvent(c.Request.Context(), ev); err != nil {
		resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
