package handler

import (
	"net/http"
	"strconv"

	"github.com/Jiffye-m/chatapp/internal/middleware"
	"github.com/Jiffye-m/chatapp/internal/models"
	"github.com/Jiffye-m/chatapp/internal/realtime"
	"github.com/Jiffye-m/chatapp/internal/upload"
	"github.com/Jiffye-m/chatapp/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageHandler serves the sidebar user list, conversation fetch and send.
type MessageHandler struct {
	DB         *gorm.DB
	Hub        *realtime.Hub
	Uploader   upload.Uploader
	EncryptKey string
	Logger     *zap.Logger
}

func NewMessageHandler(db *gorm.DB, hub *realtime.Hub, up upload.Uploader, encryptKey string, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{
		DB:         db,
		Hub:        hub,
		Uploader:   up,
		EncryptKey: encryptKey,
		Logger:     logger,
	}
}

// view builds the wire shape, decrypting stored text when needed.
func (h *MessageHandler) view(m *models.Message) models.MessageView {
	text := m.Text
	if m.TextEnc != "" {
		text = util.DecryptField(h.EncryptKey, m.TextEnc)
	}
	return models.MessageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       text,
		Image:      m.ImageURL,
		CreatedAt:  m.CreatedAt,
	}
}

// GetUsers returns every user except the caller, for the chat sidebar.
func (h *MessageHandler) GetUsers(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	var users []models.User
	if err := h.DB.Where("id <> ?", user.ID).Order("id ASC").Find(&users).Error; err != nil {
		h.Logger.Error("get users", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	c.JSON(http.StatusOK, out)
}

// otherUserID parses the :id path parameter.
func otherUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetMessages returns both directions of a conversation in insertion order.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}
	otherID, ok := otherUserID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id")
		return
	}

	msgs, err := h.conversation(user.ID, otherID)
	if err != nil {
		h.Logger.Error("get messages", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}

	out := make([]models.MessageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, h.view(&msgs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *MessageHandler) conversation(a, b uint) ([]models.Message, error) {
	var msgs []models.Message
	err := h.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

// ---------- send ----------

type sendMessageReq struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URI
}

// SendMessage persists a message and pushes it to the receiver's live
// connection when one exists. Blank messages (no text, no image) are
// rejected; a lost realtime push is not an error, the receiver picks the
// message up on the next fetch.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}
	receiverID, ok := otherUserID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Text == "" && req.Image == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Message text or image is required")
		return
	}

	var receiver models.User
	if err := h.DB.First(&receiver, receiverID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "User not found")
		} else {
			h.Logger.Error("send message: query receiver", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		}
		return
	}

	var imageURL string
	if req.Image != "" {
		url, err := h.Uploader.Upload(c.Request.Context(), req.Image)
		if err != nil {
			h.Logger.Error("send message: upload image",
				zap.Uint("sender_id", user.ID), zap.Error(err))
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid image")
			return
		}
		imageURL = url
	}

	msg := models.Message{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		ImageURL:   imageURL,
	}
	if h.EncryptKey != "" {
		enc, err := util.EncryptField(h.EncryptKey, req.Text)
		if err != nil {
			h.Logger.Error("send message: encrypt text", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
			return
		}
		msg.TextEnc = enc
	} else {
		msg.Text = req.Text
	}

	if err := h.DB.Create(&msg).Error; err != nil {
		h.Logger.Error("send message: create", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}

	view := h.view(&msg)
	h.Hub.Deliver(receiverID, view)

	c.JSON(http.StatusCreated, view)
}
