package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dipeshkhadgi/hamrospace/internal/chat"
	"github.com/Dipeshkhadgi/hamrospace/internal/middleware"
)

type MessageHandler struct {
	Pipeline *chat.Pipeline
}

// Messages serves one fixed-size page of chat history, ascending within the
// page, newest page = page 1.
func (h *MessageHandler) Messages(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		page = v
	}

	msgs, totalPages, err := h.Pipeline.Fetch(principalID, c.Param("id"), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "totalPages": totalPages})
}

// SendAttachments accepts a multipart upload of 1..n files and records the
// resulting attachment-only message.
func (h *MessageHandler) SendAttachments(c *gin.Context) {
	principalID, ok := middleware.PrincipalFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var files []chat.NamedFile
	var closers []func()
	defer func() {
		for _, close := range closers {
			close()
		}
	}()

	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		closers = append(closers, func() { _ = f.Close() })
		files = append(files, chat.NamedFile{Name: fh.Filename, Reader: f})
	}

	msg, err := h.Pipeline.SendAttachments(c.Param("id"), principalID, files)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
