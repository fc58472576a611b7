package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ReportHandler serves read-only reporting endpoints.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

func NewReportHandler(service *reports.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// InventoryAudit handles GET /v1/reports/inventory-audit.
func (h *ReportHandler) InventoryAudit(c *gin.Context) {
	var query dto.AuditReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	period := reports.Period{}
	if query.From != nil {
		period.From = *query.From
	}
	if query.To != nil {
		period.To = *query.To
	}

	report, err := h.service.BuildAuditReport(c.Request.Context(), period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAuditReport(report))
}
