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

// AssignTaskRequest hands a task to a member of staff
type AssignTaskRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	Description string `json:"description" validate:"required,max=2000"`
}

// AssignTask creates a task for a member of the caller's company
func AssignTask(c echo.Context) error {
	log := logger.FromContext(c)
	scope := currentScope(c)

	var req AssignTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	db := dbFor(c)
	var assignee model.User
	err := db.Where("id = ? AND company_id = ?", req.UserID, *scope.CompanyID).First(&assignee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prometheus.RecordAccessDenied("task", "other_company")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}
	if err != nil {
		return internalError(c, "failed to load staff member", err)
	}

	companyID := *scope.CompanyID
	task := model.TaskAssignment{
		Description:      req.Description,
		AssignedToUserID: assignee.ID,
		CompanyID:        &companyID,
		AssignedDate:     time.Now(),
	}
	if err := db.Create(&task).Error; err != nil {
		return internalError(c, "failed to assign task", err)
	}

	prometheus.RecordOperation("task", "assign")
	log.Info("Task assigned", zap.Uint("task_id", task.ID), zap.Uint("assignee_id", assignee.ID))
	return c.JSON(http.StatusCreated, task)
}

// ListEmployeeTasks returns a staff member's tasks, newest first
func ListEmployeeTasks(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	db := dbFor(c)
	var count int64
	if err := db.Model(&model.User{}).Where("id = ? AND company_id = ?", id, *scope.CompanyID).Count(&count).Error; err != nil {
		return internalError(c, "failed to load staff member", err)
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}

	var tasks []model.TaskAssignment
	if err := db.Where("assigned_to_user_id = ? AND company_id = ?", id, *scope.CompanyID).
		Order("assigned_date DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return internalError(c, "failed to load tasks", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// ApproveTask marks a task of the caller's company as approved and completed
func ApproveTask(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	db := dbFor(c)
	var task model.TaskAssignment
	err = db.Where("id = ? AND company_id = ?", id, *scope.CompanyID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	if err != nil {
		return internalError(c, "failed to load task", err)
	}

	now := time.Now()
	task.IsApprovedByBoss = true
	task.CompletedDate = &now
	if err := db.Model(&task).Select("is_approved_by_boss", "completed_date").Updates(&task).Error; err != nil {
		return internalError(c, "failed to approve task", err)
	}

	prometheus.RecordOperation("task", "approve")
	logger.FromContext(c).Info("Task approved", zap.Uint("task_id", task.ID))
	return c.JSON(http.StatusOK, task)
}

// ListMyTasks returns the tasks assigned to the caller, newest first
func ListMyTasks(c echo.Context) error {
	scope := currentScope(c)

	var tasks []model.TaskAssignment
	if err := dbFor(c).Where("assigned_to_user_id = ?", scope.UserID).
		Order("assigned_date DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return internalError(c, "failed to load tasks", err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CompleteTask lets the assignee mark a task as done
func CompleteTask(c echo.Context) error {
	scope := currentScope(c)
	id, err := paramID(c, "id")
	if err != nil {
		return done(err)
	}

	db := dbFor(c)
	var task model.TaskAssignment
	err = db.Where("id = ? AND assigned_to_user_id = ?", id, scope.UserID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	if err != nil {
		return internalError(c, "failed to load task", err)
	}

	if err := db.Model(&task).Update("is_completed_by_employee", true).Error; err != nil {
		return internalError(c, "failed to complete task", err)
	}
	task.IsCompletedByEmployee = true

	prometheus.RecordOperation("task", "complete")
	logger.FromContext(c).Info("Task completed", zap.Uint("task_id", task.ID))
	return c.JSON(http.StatusOK, task)
}
