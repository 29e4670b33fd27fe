package sandbox

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const claimsContextKey = "worklane_claims"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The sandbox serves local clients only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type router struct {
	db        *gorm.DB
	hub       *hub
	tokens    *auth.TokenIssuer
	uploadDir string
	logger    *zap.Logger
}

func newRouter(db *gorm.DB, connectionHub *hub, tokens *auth.TokenIssuer, uploadDir string, logger *zap.Logger) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &router{
		db:        db,
		hub:       connectionHub,
		tokens:    tokens,
		uploadDir: uploadDir,
		logger:    logger,
	}

	engine.POST("/api/business/auth/login", handler.handleLogin(auth.AccountTypeBusiness))
	engine.POST("/api/personal/auth/login", handler.handleLogin(auth.AccountTypePersonal))
	engine.POST("/api/auth/logout", handler.handleLogout)
	engine.GET("/ws/chat", handler.handleChatSocket)
	engine.Static("/uploads", uploadDir)

	authorized := engine.Group("/")
	authorized.Use(handler.authorize)
	authorized.GET("/api/notification/list", handler.handleNotificationList)
	authorized.POST("/api/notification/read", handler.handleNotificationRead)
	authorized.POST("/api/notification/readall", handler.handleNotificationReadAll)
	authorized.GET("/api/chat/rooms", handler.handleChatRooms)
	authorized.GET("/api/chat/online-status", handler.handleOnlineStatus)
	authorized.POST("/api/chat/upload", handler.handleUpload)
	authorized.GET("/api/business/applicants/:jobPostingId/stats", handler.handleApplicantStats)

	return engine
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *router) handleLogin(accountType int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload loginPayload
		if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.Email) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}

		var account Account
		err := r.db.Where("email = ? AND account_type = ?", payload.Email, accountType).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			r.logger.Error("account lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(payload.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := r.tokens.Issue(account.ID, account.Name, account.AccountType)
		if err != nil {
			r.logger.Error("token issue failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{"accessToken": token}})
	}
}

func (r *router) handleLogout(c *gin.Context) {
	// The sandbox keeps no server-side session state; acknowledge and let
	// the client clear its own.
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

func (r *router) authorize(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	claims, err := r.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(claimsContextKey, claims)
	c.Next()
}

func claimsFrom(c *gin.Context) auth.Claims {
	value, _ := c.Get(claimsContextKey)
	claims, _ := value.(auth.Claims)
	return claims
}

func (r *router) handleNotificationList(c *gin.Context) {
	claims := claimsFrom(c)

	var records []Notification
	err := r.db.Where("account_id = ?", claims.AccountID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		r.logger.Error("notification list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	notifications := make([]api.Notification, 0, len(records))
	for _, record := range records {
		notifications = append(notifications, api.Notification{
			ID:        record.ID,
			Message:   record.Message,
			IsRead:    record.IsRead,
			CreatedAt: record.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

type notificationReadPayload struct {
	NotificationID int64 `json:"notificationId"`
}

func (r *router) handleNotificationRead(c *gin.Context) {
	claims := claimsFrom(c)

	var payload notificationReadPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.NotificationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	err := r.db.Model(&Notification{}).
		Where("id = ? AND account_id = ?", payload.NotificationID, claims.AccountID).
		Update("is_read", 1).Error
	if err != nil {
		r.logger.Error("notification read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

func (r *router) handleNotificationReadAll(c *gin.Context) {
	claims := claimsFrom(c)

	err := r.db.Model(&Notification{}).
		Where("account_id = ?", claims.AccountID).
		Update("is_read", 1).Error
	if err != nil {
		r.logger.Error("notification readall failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}

func (r *router) handleChatRooms(c *gin.Context) {
	claims := claimsFrom(c)

	var records []ChatRoom
	err := r.db.Where("business_id = ? OR personal_id = ?", claims.AccountID, claims.AccountID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		r.logger.Error("chat room list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	rooms := make([]api.Room, 0, len(records))
	for _, record := range records {
		opponentID := record.BusinessID
		if claims.AccountID == record.BusinessID {
			opponentID = record.PersonalID
		}

		var opponent Account
		if err := r.db.First(&opponent, opponentID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("opponent lookup failed", zap.Error(err))
		}

		var lastMessage ChatMessage
		lastBody := ""
		err := r.db.Where("chat_room_id = ?", record.ID).
			Order("created_at DESC").
			First(&lastMessage).Error
		if err == nil {
			lastBody = lastMessage.Body
		}

		var unread int64
		if err := r.db.Model(&ChatMessage{}).
			Where("chat_room_id = ? AND sender_id <> ? AND is_read = 0", record.ID, claims.AccountID).
			Count(&unread).Error; err != nil {
			r.logger.Error("unread count failed", zap.Error(err))
		}

		rooms = append(rooms, api.Room{
			ID:           record.ID,
			OpponentID:   opponentID,
			OpponentName: opponent.Name,
			LastMessage:  lastBody,
			UnreadCount:  int(unread),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (r *router) handleOnlineStatus(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Query("accountId"), 10, 64)
	if err != nil || accountID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": r.hub.online(accountID)})
}

func (r *router) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(r.uploadDir, name)); err != nil {
		r.logger.Error("upload save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": "/uploads/" + name})
}

func (r *router) handleApplicantStats(c *gin.Context) {
	jobPostingID, err := strconv.ParseInt(c.Param("jobPostingId"), 10, 64)
	if err != nil || jobPostingID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	countByStatus := func(status string) int {
		var count int64
		if err := r.db.Model(&Applicant{}).
			Where("job_posting_id = ? AND status = ?", jobPostingID, status).
			Count(&count).Error; err != nil {
			r.logger.Error("applicant count failed", zap.String("status", status), zap.Error(err))
		}
		return int(count)
	}

	stats := api.ApplicantStats{
		DocumentReviewing:  countByStatus(ApplicantStatusReviewing),
		DocumentPassed:     countByStatus(ApplicantStatusPassed),
		DocumentFailed:     countByStatus(ApplicantStatusFailed),
		InterviewCompleted: countByStatus(ApplicantStatusInterviewed),
	}
	stats.TotalApplicants = stats.DocumentReviewing + stats.DocumentPassed +
		stats.DocumentFailed + stats.InterviewCompleted

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (r *router) handleChatSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return
	}
	claims, err := r.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	roomID := c.Query("roomId")
	var room ChatRoom
	err = r.db.Where("id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room_not_found"})
		return
	}
	if err != nil {
		r.logger.Error("room lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	if room.BusinessID != claims.AccountID && room.PersonalID != claims.AccountID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not_a_participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", zap.Int64("accountId", claims.AccountID), zap.Error(err))
		return
	}

	// Opening the room reads everything the opponent sent so far.
	if err := r.db.Model(&ChatMessage{}).
		Where("chat_room_id = ? AND sender_id <> ?", roomID, claims.AccountID).
		Update("is_read", 1).Error; err != nil {
		r.logger.Error("read state update failed", zap.Error(err))
	}

	client := &roomClient{
		conn:      conn,
		send:      make(chan api.Message, clientSendBufferSize),
		roomID:    roomID,
		accountID: claims.AccountID,
		logger:    r.logger,
	}
	r.hub.register(client)
	go client.writePump()

	for {
		var envelope api.Message
		if err := conn.ReadJSON(&envelope); err != nil {
			break
		}
		record := ChatMessage{
			ChatRoomID: roomID,
			SenderID:   envelope.SenderID,
			SenderName: envelope.SenderName,
			SenderType: envelope.SenderType,
			Body:       envelope.Message,
			Type:       envelope.Type,
			IsRead:     envelope.IsRead,
			CreatedAt:  time.Now().UTC(),
		}
		if err := r.db.Create(&record).Error; err != nil {
			r.logger.Error("message persist failed", zap.Error(err))
		}
		r.hub.broadcast(roomID, envelope)
	}

	r.hub.unregister(client)
	conn.Close()
}
