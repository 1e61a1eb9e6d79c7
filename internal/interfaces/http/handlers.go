package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatewise/gatepass/internal/application/service"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/lifecycle"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	configService      service.ConfigService
	workflowService    service.WorkflowService
	appointmentService service.AppointmentService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	configService service.ConfigService,
	workflowService service.WorkflowService,
	appointmentService service.AppointmentService,
	logger Logger,
) *Handlers {
	return &Handlers{
		configService:      configService,
		workflowService:    workflowService,
		appointmentService: appointmentService,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LevelConfigRequest is one level in a configuration replace request
type LevelConfigRequest struct {
	LevelIndex       int    `json:"level_index" binding:"required"`
	DepartmentID     string `json:"department_id"`
	ApproverID       string `json:"approver_id"`
	HostSubstitution bool   `json:"host_substitution"`
	NotificationOnly bool   `json:"notification_only"`
	AssetBased       bool   `json:"asset_based"`
}

// ConfigRequest represents a configuration replace request
type ConfigRequest struct {
	PlantID            string               `json:"plant_id" binding:"required"`
	DocumentType       string               `json:"document_type" binding:"required"`
	Operation          string               `json:"operation" binding:"required"`
	DepartmentSpecific bool                 `json:"department_specific"`
	Levels             []LevelConfigRequest `json:"levels" binding:"required"`
}

// SubmitRequest represents an appointment submission
type SubmitRequest struct {
	PlantID         string         `json:"plant_id" binding:"required"`
	HostID          string         `json:"host_id" binding:"required"`
	DepartmentID    string         `json:"department_id"`
	Purpose         string         `json:"purpose"`
	RiskClass       string         `json:"risk_class"`
	Operation       string         `json:"operation"`
	AppointmentDate time.Time      `json:"appointment_date" binding:"required"`
	ValidTill       time.Time      `json:"valid_till" binding:"required"`
	Visitors        []VisitorInput `json:"visitors" binding:"required"`
}

// VisitorInput is one visitor in a submission
type VisitorInput struct {
	Name       string           `json:"name" binding:"required"`
	IDNumber   string           `json:"id_number"`
	Phone      string           `json:"phone"`
	Belongings []BelongingInput `json:"belongings"`
}

// BelongingInput is one declared asset in a submission
type BelongingInput struct {
	Description string `json:"description" binding:"required"`
	SerialNo    string `json:"serial_no"`
}

// DecisionRequest represents an approver decision
type DecisionRequest struct {
	LevelIndex int    `json:"level_index" binding:"required"`
	ApproverID string `json:"approver_id" binding:"required"`
	Decision   string `json:"decision" binding:"required"`
	Comment    string `json:"comment"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID                 int64             `json:"id"`
	Code               string            `json:"code"`
	PlantID            string            `json:"plant_id"`
	HostID             string            `json:"host_id"`
	DepartmentID       string            `json:"department_id,omitempty"`
	Purpose            string            `json:"purpose,omitempty"`
	RiskClass          string            `json:"risk_class"`
	AppointmentDate    string            `json:"appointment_date"`
	ValidTill          string            `json:"valid_till"`
	ApprovalInstanceID *int64            `json:"approval_instance_id,omitempty"`
	PassType           string            `json:"pass_type"`
	Active             bool              `json:"active"`
	CheckedInAt        *string           `json:"checked_in_at,omitempty"`
	CheckedOutAt       *string           `json:"checked_out_at,omitempty"`
	Visitors           []VisitorResponse `json:"visitors"`
}

// VisitorResponse is one visitor in API responses
type VisitorResponse struct {
	Name       string              `json:"name"`
	IDNumber   string              `json:"id_number,omitempty"`
	Phone      string              `json:"phone,omitempty"`
	Belongings []BelongingResponse `json:"belongings,omitempty"`
}

// BelongingResponse is one asset in API responses
type BelongingResponse struct {
	Description string `json:"description"`
	SerialNo    string `json:"serial_no,omitempty"`
}

// InstanceResponse represents an approval instance in API responses
type InstanceResponse struct {
	ID               int64           `json:"id"`
	AppointmentID    int64           `json:"appointment_id"`
	PlantID          string          `json:"plant_id"`
	DocumentType     string          `json:"document_type"`
	Operation        string          `json:"operation"`
	AggregateStatus  string          `json:"aggregate_status"`
	ActiveLevelIndex int             `json:"active_level_index"`
	SubmittedAt      string          `json:"submitted_at"`
	DecidedAt        *string         `json:"decided_at,omitempty"`
	Levels           []LevelResponse `json:"levels"`
}

// LevelResponse is one chain level in API responses
type LevelResponse struct {
	LevelIndex       int     `json:"level_index"`
	ApproverID       string  `json:"approver_id"`
	NotificationOnly bool    `json:"notification_only"`
	Decision         string  `json:"decision"`
	Comment          string  `json:"comment,omitempty"`
	DecidedAt        *string `json:"decided_at,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ReplaceConfiguration handles PUT /api/v1/approval-configs
func (h *Handlers) ReplaceConfiguration(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	cfg := &entity.ApprovalConfiguration{
		PlantID:            req.PlantID,
		DocumentType:       req.DocumentType,
		Operation:          req.Operation,
		DepartmentSpecific: req.DepartmentSpecific,
	}
	for _, lvl := range req.Levels {
		cfg.Levels = append(cfg.Levels, entity.ApprovalLevelConfig{
			PlantID:          req.PlantID,
			DocumentType:     req.DocumentType,
			Operation:        req.Operation,
			LevelIndex:       lvl.LevelIndex,
			DepartmentID:     lvl.DepartmentID,
			ApproverID:       lvl.ApproverID,
			HostSubstitution: lvl.HostSubstitution,
			NotificationOnly: lvl.NotificationOnly,
			AssetBased:       lvl.AssetBased,
		})
	}

	if err := h.configService.Replace(c.Request.Context(), cfg); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetConfiguration handles GET /api/v1/approval-configs
func (h *Handlers) GetConfiguration(c *gin.Context) {
	plantID := c.Query("plant_id")
	documentType := c.Query("document_type")
	operation := c.Query("operation")
	if plantID == "" || documentType == "" || operation == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "plant_id, document_type and operation are required"})
		return
	}

	cfg, err := h.configService.Get(c.Request.Context(), plantID, documentType, operation)
	if err != nil {
		if errors.Is(err, approval.ErrNoApprovalChain) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "configuration not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// SubmitAppointment handles POST /api/v1/appointments
func (h *Handlers) SubmitAppointment(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	submit := service.SubmitRequest{
		PlantID:         req.PlantID,
		HostID:          req.HostID,
		DepartmentID:    req.DepartmentID,
		Purpose:         req.Purpose,
		RiskClass:       req.RiskClass,
		Operation:       req.Operation,
		AppointmentDate: req.AppointmentDate,
		ValidTill:       req.ValidTill,
	}
	for _, v := range req.Visitors {
		visitor := service.VisitorInput{
			Name:     v.Name,
			IDNumber: v.IDNumber,
			Phone:    v.Phone,
		}
		for _, b := range v.Belongings {
			visitor.Belongings = append(visitor.Belongings, service.BelongingInput{
				Description: b.Description,
				SerialNo:    b.SerialNo,
			})
		}
		submit.Visitors = append(submit.Visitors, visitor)
	}

	appointment, err := h.workflowService.Submit(c.Request.Context(), submit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toAppointmentResponse(appointment)})
}

// GetAppointment handles GET /api/v1/appointments/:id
func (h *Handlers) GetAppointment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toAppointmentResponse(appointment)})
}

// CheckIn handles POST /api/v1/appointments/:id/check-in
func (h *Handlers) CheckIn(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.CheckIn(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toAppointmentResponse(appointment)})
}

// CheckOut handles POST /api/v1/appointments/:id/check-out
func (h *Handlers) CheckOut(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.CheckOut(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toAppointmentResponse(appointment)})
}

// Deactivate handles POST /api/v1/appointments/:id/deactivate
func (h *Handlers) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.appointmentService.Deactivate(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetApproval handles GET /api/v1/appointments/:id/approval
func (h *Handlers) GetApproval(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	instance, err := h.workflowService.GetInstance(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toInstanceResponse(instance)})
}

// RecordDecision handles POST /api/v1/instances/:id/decisions
func (h *Handlers) RecordDecision(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	instance, err := h.workflowService.RecordDecision(
		c.Request.Context(), id, req.LevelIndex, req.ApproverID, workflow.Status(req.Decision), req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toInstanceResponse(instance)})
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id: " + idStr})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, approval.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, approval.ErrInstanceNotFound),
		errors.Is(err, lifecycle.ErrAppointmentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, approval.ErrLevelNotActive),
		errors.Is(err, approval.ErrLevelAlreadyDecided),
		errors.Is(err, approval.ErrLevelNotActionable),
		errors.Is(err, approval.ErrInstanceTerminal),
		errors.Is(err, approval.ErrInstanceStale),
		errors.Is(err, lifecycle.ErrAlreadyCheckedIn),
		errors.Is(err, lifecycle.ErrAlreadyCheckedOut),
		errors.Is(err, lifecycle.ErrNotCheckedIn),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, lifecycle.ErrInactiveAppointment),
		errors.Is(err, lifecycle.ErrApprovalNotGranted):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidSubmission),
		errors.Is(err, approval.ErrInvalidDecision),
		errors.Is(err, approval.ErrNoApprovalChain),
		errors.Is(err, approval.ErrUnresolvedApprover):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func toAppointmentResponse(a *entity.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:                 a.ID,
		Code:               a.Code,
		PlantID:            a.PlantID,
		HostID:             a.HostID,
		DepartmentID:       a.DepartmentID,
		Purpose:            a.Purpose,
		RiskClass:          a.RiskClass,
		AppointmentDate:    a.AppointmentDate.Format(time.RFC3339),
		ValidTill:          a.ValidTill.Format(time.RFC3339),
		ApprovalInstanceID: a.ApprovalInstanceID,
		PassType:           a.PassType.String(),
		Active:             a.Active,
	}
	if a.CheckedInAt != nil {
		t := a.CheckedInAt.Format(time.RFC3339)
		resp.CheckedInAt = &t
	}
	if a.CheckedOutAt != nil {
		t := a.CheckedOutAt.Format(time.RFC3339)
		resp.CheckedOutAt = &t
	}
	for _, v := range a.Visitors {
		visitor := VisitorResponse{
			Name:     v.Name,
			IDNumber: v.IDNumber,
			Phone:    v.Phone,
		}
		for _, b := range v.Belongings {
			visitor.Belongings = append(visitor.Belongings, BelongingResponse{
				Description: b.Description,
				SerialNo:    b.SerialNo,
			})
		}
		resp.Visitors = append(resp.Visitors, visitor)
	}
	return resp
}

func toInstanceResponse(i *entity.ApprovalInstance) InstanceResponse {
	resp := InstanceResponse{
		ID:               i.ID,
		AppointmentID:    i.AppointmentID,
		PlantID:          i.PlantID,
		DocumentType:     i.DocumentType,
		Operation:        i.Operation,
		AggregateStatus:  i.Aggregate.String(),
		ActiveLevelIndex: i.ActiveLevelIndex,
		SubmittedAt:      i.SubmittedAt.Format(time.RFC3339),
	}
	if i.DecidedAt != nil {
		t := i.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &t
	}
	for _, lvl := range i.Levels {
		level := LevelResponse{
			LevelIndex:       lvl.LevelIndex,
			ApproverID:       lvl.ApproverID,
			NotificationOnly: lvl.NotificationOnly,
			Decision:         lvl.Decision.String(),
			Comment:          lvl.Comment,
		}
		if lvl.DecidedAt != nil {
			t := lvl.DecidedAt.Format(time.RFC3339)
			level.DecidedAt = &t
		}
		resp.Levels = append(resp.Levels, level)
	}
	return resp
}
