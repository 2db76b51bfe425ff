package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	apperrors "github.com/estate-geo-service/internal/pkg/errors"
	"github.com/estate-geo-service/internal/pkg/utils"
	"github.com/estate-geo-service/internal/usecase"
	"github.com/estate-geo-service/internal/usecase/dto"
)

// SearchHandler - обработчик поиска по радиусу
type SearchHandler struct {
	searchUC *usecase.ProximitySearchUseCase
	logger   *zap.Logger
}

// NewSearchHandler - создание нового SearchHandler
func NewSearchHandler(searchUC *usecase.ProximitySearchUseCase, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchUC: searchUC,
		logger:   logger,
	}
}

// SearchProperties godoc
// @Summary Поиск объявлений по радиусу
// @Description Возвращает объявления в радиусе от точки, ближайшие первыми. Без lat/lng возвращает обычную страницу списка.
// @Tags Search
// @Produce json
// @Param lat query number false "Широта точки запроса"
// @Param lng query number false "Долгота точки запроса"
// @Param radius query number false "Радиус в км" default(10)
// @Param property_type query int false "ID типа недвижимости"
// @Param min_price query number false "Минимальная цена"
// @Param max_price query number false "Максимальная цена"
// @Param min_bedrooms query int false "Минимум спален"
// @Param max_bedrooms query int false "Максимум спален"
// @Param min_bathrooms query number false "Минимум ванных"
// @Param max_bathrooms query number false "Максимум ванных"
// @Param page query int false "Номер страницы" default(1)
// @Param page_size query int false "Размер страницы" default(20)
// @Success 200 {object} dto.ProximitySearchResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/search/properties [get]
func (h *SearchHandler) SearchProperties(c *fiber.Ctx) error {
	return h.search(c, domain.KindListing)
}

// SearchNearby godoc
// @Summary Поиск записей по радиусу
// @Description Поиск объявлений, школ или точек интереса в радиусе от точки
// @Tags Search
// @Produce json
// @Param kind path string true "Тип записей" Enums(listing, school, poi)
// @Param lat query number false "Широта точки запроса"
// @Param lng query number false "Долгота точки запроса"
// @Param radius query number false "Радиус в км" default(10)
// @Param page query int false "Номер страницы" default(1)
// @Param page_size query int false "Размер страницы" default(20)
// @Success 200 {object} dto.ProximitySearchResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/nearby/{kind} [get]
func (h *SearchHandler) SearchNearby(c *fiber.Ctx) error {
	kind, ok := domain.ParseRecordKind(c.Params("kind"))
	if !ok {
		return utils.SendError(c, apperrors.ErrInvalidKind.WithDetails(map[string]interface{}{
			"kind": c.Params("kind"),
		}))
	}
	return h.search(c, kind)
}

func (h *SearchHandler) search(c *fiber.Ctx, kind domain.RecordKind) error {
	var req dto.ProximitySearchRequest
	if err := c.QueryParser(&req); err != nil {
		h.logger.Debug("Invalid search query", zap.String("query", string(c.Request().URI().QueryString())), zap.Error(err))
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"query": err.Error(),
		}))
	}
	req.Kind = kind

	result, err := h.searchUC.Search(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, result)
}
