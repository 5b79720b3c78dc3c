package handler

import (
	"errors"
	"net/http"
	"time"

	"agrocore-service/internal/model"
	"agrocore-service/pkg/logger"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContactRequest is a message sent through the public contact form
type ContactRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Message  string `json:"message" validate:"required,max=2000"`
}

// ReplyRequest answers a contact message
type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

// SubmitContact stores a message from the public contact form
func SubmitContact(c echo.Context) error {
	var req ContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	form := model.ContactForm{
		FullName: req.FullName,
		Email:    model.NormalizeEmail(req.Email),
		Message:  req.Message,
	}
	if err := dbFor(c).Create(&form).Error; err != nil {
		return internalError(c, "failed to send message", err)
	}

	prometheus.RecordOperation("contact", "submit")
	logger.FromContext(c).Info("Contact message received", zap.Uint("message_id", form.ID))
	return c.JSON(http.StatusCreated, echo.Map{"id": form.ID, "message": "message sent"})
}

// ListInbox returns the caller's own contact messages with their replies
func ListInbox(c echo.Context) error {
	scope := currentScope(c)

	var forms []model.ContactForm
	if err := dbFor(c).Where("LOWER(email) = ?", model.NormalizeEmail(scope.Email)).
		Order("created_at DESC").Order("id DESC").Find(&forms).Error; err != nil {
		return internalError(c, "failed to load inbox", err)
	}
	return c.JSON(http.StatusOK, forms)
}

// ListSupportMessages returns every contact message, newest first
func ListSupportMessages(c echo.Context) error {
	query := dbFor(c).Order("created_at DESC").Order("id DESC")
	if c.QueryParam("unreplied") == "true" {
		query = query.Where("is_replied = ?", false)
	}

	var forms []model.ContactForm
	if err := query.Find(&forms).Error; err != nil {
		return internalError(c, "failed to load messages", err)
	}
	return c.JSON(http.StatusOK, forms)
}

// ReplyToMessage answers a contact message on behalf of support
func ReplyToMessage(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	var req ReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	db := dbFor(c)
	var form model.ContactForm
	err = db.First(&form, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
	}
	if err != nil {
		return internalError(c, "failed to load message", err)
	}

	now := time.Now()
	form.IsReplied = true
	form.ReplyMessage = req.Content
	form.RepliedDate = &now
	form.RepliedBy = repliedBy(scope.Role)
	if err := db.Save(&form).Error; err != nil {
		return internalError(c, "failed to save reply", err)
	}

	prometheus.RecordOperation("contact", "reply")
	logger.FromContext(c).Info("Contact message answered",
		zap.Uint("message_id", form.ID),
		zap.String("replied_by", form.RepliedBy))
	return c.JSON(http.StatusOK, form)
}

func repliedBy(role model.Role) string {
	if role == model.RoleSystemAdmin {
		return "Admin"
	}
	return "IT Support"
}
