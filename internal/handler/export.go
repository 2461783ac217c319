package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/Jiffye-m/chatapp/internal/middleware"
	"github.com/Jiffye-m/chatapp/internal/models"
	"github.com/Jiffye-m/chatapp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler downloads a conversation's history as CSV or XLSX.
type ExportHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewExportHandler(db *gorm.DB, encryptKey string) *ExportHandler {
	return &ExportHandler{DB: db, EncryptKey: encryptKey}
}

func (h *ExportHandler) decryptText(m *models.Message) string {
	if m.TextEnc != "" {
		return util.DecryptField(h.EncryptKey, m.TextEnc)
	}
	return m.Text
}

func (h *ExportHandler) conversation(c *gin.Context) (*models.User, []models.Message, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return nil, nil, false
	}
	otherID, ok := otherUserID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid user id")
		return nil, nil, false
	}

	var msgs []models.Message
	if err := h.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			user.ID, otherID, otherID, user.ID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return nil, nil, false
	}
	return user, msgs, true
}

// Export writes the conversation with :id as ?format=csv (default) or xlsx.
func (h *ExportHandler) Export(c *gin.Context) {
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		h.exportCSV(c)
	case "xlsx":
		h.exportXLSX(c)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unknown export format")
	}
}

var exportHeaders = []string{"Direction", "Text", "Image", "Sent At"}

func (h *ExportHandler) row(user *models.User, m *models.Message) []string {
	direction := "received"
	if m.SenderID == user.ID {
		direction = "sent"
	}
	return []string{
		direction,
		h.decryptText(m),
		m.ImageURL,
		m.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context) {
	user, msgs, ok := h.conversation(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"messages_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range msgs {
		writer.Write(h.row(user, &msgs[i]))
	}
}

func (h *ExportHandler) exportXLSX(c *gin.Context) {
	user, msgs, ok := h.conversation(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Messages"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range msgs {
		row := idx + 2
		for col, val := range h.row(user, &msgs[idx]) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 50)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "D", 22)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"messages_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
	}
}
