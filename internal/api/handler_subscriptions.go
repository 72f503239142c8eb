package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartfarm-backend/internal/model"
)

type subscriptionRequest struct {
	Endpoint string   `json:"endpoint" binding:"required"`
	Keys     keysBody `json:"keys" binding:"required"`
	Devices  []string `json:"devices"`
}

type keysBody struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// GetSubscription returns the device list a subscription is watching.
// GET /api/subscriptions?endpoint=...
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var sub model.PushSubscription
	err := h.db.Preload("Devices").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"devices": []string{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	devices := make([]string, 0, len(sub.Devices))
	for _, d := range sub.Devices {
		devices = append(devices, d.DeviceID)
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// UpdateSubscription creates or replaces a subscription and its watched
// device set. PUT /api/subscriptions
func (h *Handler) UpdateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		if err := tx.Where("endpoint = ?", req.Endpoint).
			Delete(&model.SubscriptionDevice{}).Error; err != nil {
			return err
		}

		for _, deviceID := range req.Devices {
			device := model.SubscriptionDevice{Endpoint: req.Endpoint, DeviceID: deviceID}
			if err := tx.Create(&device).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "devices": req.Devices})
}

// DeleteSubscription removes a subscription entirely.
// DELETE /api/subscriptions
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.db.Delete(&model.PushSubscription{Endpoint: req.Endpoint}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VapidPublicKey exposes the server's VAPID public key for browser
// subscription. GET /api/vapid_public_key
func (h *Handler) VapidPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are not configured"})
		return
	}
	c.String(http.StatusOK, h.webpush.VAPIDPublicKey)
}
