package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dipeshkhadgi/hamrospace/internal/chat"
	"github.com/Dipeshkhadgi/hamrospace/internal/middleware"
)

type ChatHandler struct {
	Chats *chat.Manager
}

type createGroupBody struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members" binding:"required"`
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body createGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	created, err := h.Chats.CreateGroup(principalID, body.Name, body.Members)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": created})
}

func (h *ChatHandler) MyChats(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	chats, err := h.Chats.MyChats(principalID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h *ChatHandler) MyGroups(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	groups, err := h.Chats.MyGroups(principalID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

type membersBody struct {
	Members []string `json:"members" binding:"required"`
}

func (h *ChatHandler) AddMembers(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body membersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := h.Chats.AddMembers(principalID, c.Param("id"), body.Members)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": updated})
}

type removeMemberBody struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *ChatHandler) RemoveMember(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body removeMemberBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := h.Chats.RemoveMember(principalID, c.Param("id"), body.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": updated})
}

func (h *ChatHandler) Leave(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	updated, err := h.Chats.Leave(principalID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": updated})
}

func (h *ChatHandler) Details(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	found, err := h.Chats.Details(principalID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": found})
}

type renameBody struct {
	Name string `json:"name" binding:"required"`
}

func (h *ChatHandler) Rename(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var body renameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := h.Chats.Rename(principalID, c.Param("id"), body.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": updated})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	if err := h.Chats.Delete(principalID, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
