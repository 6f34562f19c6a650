package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dipeshkhadgi/hamrospace/internal/auth"
	"github.com/Dipeshkhadgi/hamrospace/internal/blob"
	"github.com/Dipeshkhadgi/hamrospace/internal/chat"
	"github.com/Dipeshkhadgi/hamrospace/internal/event"
	"github.com/Dipeshkhadgi/hamrospace/internal/handler"
	"github.com/Dipeshkhadgi/hamrospace/internal/hub"
	"github.com/Dipeshkhadgi/hamrospace/internal/middleware"
	"github.com/Dipeshkhadgi/hamrospace/internal/social"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

type Deps struct {
	Store       *store.Store
	Blobs       blob.Store
	TokenConfig auth.TokenConfig
	Log         *slog.Logger

	// UploadDir, when set, is served at /uploads so attachment URLs
	// resolve. Empty disables static serving.
	UploadDir string
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	wsHub := hub.New()
	var events event.Emitter = &hub.Emitter{Hub: wsHub}

	chats := &chat.Manager{Store: deps.Store, Events: events, Blobs: deps.Blobs, Log: deps.Log}
	pipeline := &chat.Pipeline{Store: deps.Store, Events: events, Blobs: deps.Blobs, Log: deps.Log}
	workflow := &social.Workflow{Store: deps.Store, Chats: chats, Log: deps.Log}

	protected := r.Group("/v1")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))

	chatHandler := &handler.ChatHandler{Chats: chats}
	protected.POST("/chats/group", chatHandler.CreateGroup)
	protected.GET("/chats", chatHandler.MyChats)
	protected.GET("/chats/groups", chatHandler.MyGroups)
	protected.PUT("/chats/:id/members", chatHandler.AddMembers)
	protected.PUT("/chats/:id/members/remove", chatHandler.RemoveMember)
	protected.DELETE("/chats/:id/leave", chatHandler.Leave)
	protected.GET("/chats/:id", chatHandler.Details)
	protected.PUT("/chats/:id", chatHandler.Rename)
	protected.DELETE("/chats/:id", chatHandler.Delete)

	messageHandler := &handler.MessageHandler{Pipeline: pipeline}
	protected.GET("/chats/:id/messages", messageHandler.Messages)
	protected.POST("/chats/:id/attachments", messageHandler.SendAttachments)

	friendRequestLimiter := middleware.NewRateLimiter(30, time.Minute)
	friendsHandler := &handler.FriendsHandler{Workflow: workflow}
	protected.PUT("/friends/request", middleware.RateLimitMiddleware(friendRequestLimiter), friendsHandler.SendRequest)
	protected.PUT("/friends/accept", friendsHandler.ResolveRequest)
	protected.GET("/notifications", friendsHandler.Notifications)

	wsHandler := &handler.WebSocketHandler{Hub: wsHub, Pipeline: pipeline, TokenConfig: deps.TokenConfig, Log: deps.Log}
	r.GET("/ws", wsHandler.Serve)

	return r
}
