package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	apperrors "github.com/estate-geo-service/internal/pkg/errors"
	"github.com/estate-geo-service/internal/pkg/utils"
	"github.com/estate-geo-service/internal/pkg/validator"
	"github.com/estate-geo-service/internal/usecase"
	"github.com/estate-geo-service/internal/usecase/dto"
)

// MaintenanceHandler - отчёт о состоянии координат (только чтение)
type MaintenanceHandler struct {
	consistencyUC *usecase.ConsistencyUseCase
	logger        *zap.Logger
}

// NewMaintenanceHandler - создание нового MaintenanceHandler
func NewMaintenanceHandler(consistencyUC *usecase.ConsistencyUseCase, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		consistencyUC: consistencyUC,
		logger:        logger,
	}
}

// GetCoordinateReport godoc
// @Summary Отчёт о дефектах координат
// @Description Проверяет координаты записей и возвращает количество и первые ID по каждой категории дефектов. Данные не изменяются.
// @Tags Maintenance
// @Produce json
// @Param kind query string false "Тип записей" Enums(listing, school, poi) default(listing)
// @Param from_id query int false "Начальный ID (включительно)"
// @Param to_id query int false "Конечный ID (включительно)"
// @Success 200 {object} utils.SuccessResponse{data=domain.AuditReport}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/maintenance/coordinates/report [get]
func (h *MaintenanceHandler) GetCoordinateReport(c *fiber.Ctx) error {
	req := dto.CoordinateReportRequest{Kind: domain.KindListing}
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"query": err.Error(),
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	report, err := h.consistencyUC.Check(c.UserContext(), req.Scope())
	if err != nil {
		h.logger.Error("Failed to build coordinate report", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, report, &utils.Meta{Total: report.Total})
}
