package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dipeshkhadgi/hamrospace/internal/middleware"
	"github.com/Dipeshkhadgi/hamrospace/internal/social"
)

type FriendsHandler struct {
	Workflow *social.Workflow
}

type sendRequestBody struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

func (h *FriendsHandler) SendRequest(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req, err := h.Workflow.SendRequest(principalID, body.ReceiverID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

type resolveRequestBody struct {
	RequestID string `json:"requestId" binding:"required"`
	Accept    *bool  `json:"accept" binding:"required"`
}

// ResolveRequest accepts or rejects a pending friend request, depending on
// the accept flag.
func (h *FriendsHandler) ResolveRequest(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body resolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var err error
	var req any
	if *body.Accept {
		req, err = h.Workflow.Accept(body.RequestID, principalID)
	} else {
		req, err = h.Workflow.Reject(body.RequestID, principalID)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func (h *FriendsHandler) Notifications(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	notifications, err := h.Workflow.Notifications(principalID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
