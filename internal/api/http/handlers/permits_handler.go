package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/permit-service/internal/api/dto"
	"github.com/spec-kit/permit-service/internal/auth"
	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/internal/service"
	apperrors "github.com/spec-kit/permit-service/pkg/util"
)

// PermitsHandler maps the HTTP surface 1:1 onto permit engine operations.
// It extracts the caller identity and body; all gating and state rules live
// in the engine.
type PermitsHandler struct {
	service *service.PermitService
}

// NewPermitsHandler constructs handler.
func NewPermitsHandler(permitService *service.PermitService) *PermitsHandler {
	return &PermitsHandler{service: permitService}
}

// Create POST /permits.
func (h *PermitsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreatePermitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	permit, err := h.service.Create(c.Context(), principal.ActorID, principal.Role, service.PermitCreateInput{
		MallID:         req.MallID,
		TenantID:       req.TenantID,
		Type:           req.Type,
		RiskLevel:      req.RiskLevel,
		Description:    req.Description,
		Location:       req.Location,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": permitResponse(permit)})
}

// List GET /permits.
func (h *PermitsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parsePermitQuery(c)
	permits, pagination, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PermitResponse, 0, len(permits))
	for i := range permits {
		items = append(items, permitResponse(&permits[i]))
	}
	return c.JSON(fiber.Map{"data": items, "pagination": pagination})
}

// Stats GET /permits/stats.
func (h *PermitsHandler) Stats(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Get GET /permits/:id.
func (h *PermitsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	permit, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Update PATCH /permits/:id.
func (h *PermitsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePermitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permit, err := h.service.Update(c.Context(), c.Params("id"), principal.ActorID, principal.Role, service.PermitUpdateInput{
		Description:    req.Description,
		Location:       req.Location,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Approve POST /permits/:id/approve.
func (h *PermitsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	permit, err := h.service.Approve(c.Context(), c.Params("id"), principal.ActorID, principal.Role, req.Comments)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Reject POST /permits/:id/reject.
func (h *PermitsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permit, err := h.service.Reject(c.Context(), c.Params("id"), principal.ActorID, principal.Role, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Activate POST /permits/:id/activate.
func (h *PermitsHandler) Activate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	permit, err := h.service.Activate(c.Context(), c.Params("id"), principal.ActorID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Complete POST /permits/:id/complete.
func (h *PermitsHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	permit, err := h.service.Complete(c.Context(), c.Params("id"), principal.ActorID, principal.Role, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// Cancel POST /permits/:id/cancel.
func (h *PermitsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permit, err := h.service.Cancel(c.Context(), c.Params("id"), principal.ActorID, principal.Role, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permitResponse(permit)})
}

// AddInspection POST /permits/:id/inspections.
func (h *PermitsHandler) AddInspection(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permit, err := h.service.AddInspection(c.Context(), c.Params("id"), principal.ActorID, principal.Role, service.InspectionInput{
		Inspector: req.Inspector,
		Type:      req.Type,
		Findings:  req.Findings,
		Status:    req.Status,
		Comments:  req.Comments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": permitResponse(permit)})
}

// AddIncident POST /permits/:id/incidents.
func (h *PermitsHandler) AddIncident(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.IncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	permit, err := h.service.AddIncident(c.Context(), c.Params("id"), principal.ActorID, principal.Role, service.IncidentInput{
		Description: req.Description,
		Severity:    req.Severity,
		Injuries:    req.Injuries,
		Damage:      req.Damage,
		Actions:     req.Actions,
		ReportedBy:  req.ReportedBy,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": permitResponse(permit)})
}

// Delete DELETE /permits/:id.
func (h *PermitsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), c.Params("id"), principal.ActorID, principal.Role); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parsePermitQuery(c *fiber.Ctx) service.PermitListFilter {
	filter := service.PermitListFilter{}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		value := domain.PermitStatus(status)
		filter.Status = &value
	}
	if permitType := strings.TrimSpace(c.Query("type")); permitType != "" {
		value := domain.PermitType(permitType)
		filter.Type = &value
	}
	if risk := strings.TrimSpace(c.Query("risk_level")); risk != "" {
		value := domain.RiskLevel(risk)
		filter.RiskLevel = &value
	}
	if tenantID := strings.TrimSpace(c.Query("tenant_id")); tenantID != "" {
		filter.TenantID = &tenantID
	}
	if mallID := strings.TrimSpace(c.Query("mall_id")); mallID != "" {
		filter.MallID = &mallID
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	filter.Page = parseInt(c.Query("page"), 1)
	filter.Limit = parseInt(c.Query("limit"), 20)
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func permitResponse(permit *domain.WorkPermit) dto.PermitResponse {
	return dto.PermitResponse{
		ID:                 permit.ID,
		PermitNumber:       permit.PermitNumber,
		MallID:             permit.MallID,
		TenantID:           permit.TenantID,
		Type:               permit.Type,
		Category:           permit.Type.Category(),
		RiskLevel:          permit.RiskLevel,
		Status:             permit.Status,
		Description:        permit.Description,
		Location:           permit.Location,
		ScheduledStart:     permit.ScheduledStart,
		ScheduledEnd:       permit.ScheduledEnd,
		ActualStart:        permit.ActualStart,
		ApprovalHistory:    permit.ApprovalHistory,
		Inspections:        permit.Inspections,
		Incidents:          permit.Incidents,
		CompletionNotes:    permit.CompletionNotes,
		CancellationReason: permit.CancellationReason,
		RejectionReason:    permit.RejectionReason,
		CreatedAt:          permit.CreatedAt,
		UpdatedAt:          permit.UpdatedAt,
	}
}
