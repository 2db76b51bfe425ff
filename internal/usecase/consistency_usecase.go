package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	apperrors "github.com/estate-geo-service/internal/pkg/errors"
	"github.com/estate-geo-service/internal/pkg/metrics"
)

// FixOptions - параметры режима исправления после проверки
type FixOptions struct {
	Selection domain.RepairSelection
	DryRun    bool
}

// FixResult - что было (или было бы) исправлено
type FixResult struct {
	Repair      *domain.RepairSummary `json:"repair"`
	MismatchIDs []int64               `json:"mismatch_ids"`
	Rederived   int64                 `json:"rederived"`
	DryRun      bool                  `json:"dry_run"`
}

// ConsistencyUseCase - проверка согласованности координат (только чтение) и режим исправления
type ConsistencyUseCase struct {
	store     repository.GeoRecordRepository
	repair    *RepairUseCase
	logger    *zap.Logger
	batchSize int
}

// NewConsistencyUseCase - создание нового ConsistencyUseCase
func NewConsistencyUseCase(
	store repository.GeoRecordRepository,
	repair *RepairUseCase,
	logger *zap.Logger,
	batchSize int,
) *ConsistencyUseCase {
	return &ConsistencyUseCase{
		store:     store,
		repair:    repair,
		logger:    logger,
		batchSize: batchSize,
	}
}

func scopeQuery(scope domain.AuditScope) repository.ScanQuery {
	return repository.ScanQuery{
		Kind:   scope.Kind,
		FromID: scope.FromID,
		ToID:   scope.ToID,
	}
}

func validateScope(scope domain.AuditScope) error {
	if !validKind(scope.Kind) {
		return apperrors.ErrInvalidKind.WithDetails(map[string]interface{}{"kind": scope.Kind})
	}
	if scope.FromID != nil && scope.ToID != nil && *scope.FromID > *scope.ToID {
		return apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": "from_id is greater than to_id",
		})
	}
	return nil
}

// Check - один проход по записям с классификацией дефектов; данные не изменяются
func (uc *ConsistencyUseCase) Check(ctx context.Context, scope domain.AuditScope) (*domain.AuditReport, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	report := domain.NewAuditReport(scope)
	err := scanAll(ctx, uc.store, scopeQuery(scope), uc.batchSize, func(p *domain.GeoPlace) error {
		report.Record(&p.GeoRecord)
		return nil
	})
	if err != nil {
		uc.logger.Error("Coordinate audit failed",
			zap.String("kind", string(scope.Kind)),
			zap.Int("checked", report.Total),
			zap.Error(err))
		return nil, fmt.Errorf("coordinate audit: %w", err)
	}

	for category, bucket := range report.Defects {
		metrics.AuditDefects.WithLabelValues(string(scope.Kind), string(category)).Set(float64(bucket.Count))
	}

	uc.logger.Info("Coordinate audit finished",
		zap.String("kind", string(scope.Kind)),
		zap.Int("total", report.Total),
		zap.Int("with_coordinates", report.WithCoordinates),
		zap.Int("missing", report.Count(domain.DefectMissing)),
		zap.Int("globally_invalid", report.Count(domain.DefectGloballyInvalid)),
		zap.Int("zero_degenerate", report.Count(domain.DefectZeroDegenerate)),
		zap.Int("out_of_region", report.Count(domain.DefectOutOfRegion)),
		zap.Int("representation_mismatch", report.Count(domain.DefectMismatch)))

	return report, nil
}

// Fix ремонтирует globally_invalid и zero_degenerate (или выборку из opts),
// затем пересчитывает геометрию из скаляров для representation_mismatch
func (uc *ConsistencyUseCase) Fix(ctx context.Context, scope domain.AuditScope, opts FixOptions) (*FixResult, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	result := &FixResult{DryRun: opts.DryRun, MismatchIDs: []int64{}}

	summary, err := uc.repair.Run(ctx, RepairRequest{
		Kind:      scope.Kind,
		Selection: opts.Selection,
		DryRun:    opts.DryRun,
		FromID:    scope.FromID,
		ToID:      scope.ToID,
	})
	result.Repair = summary
	if err != nil {
		return result, err
	}

	// Повторный проход: после ремонта часть расхождений уже устранена
	err = scanAll(ctx, uc.store, scopeQuery(scope), uc.batchSize, func(p *domain.GeoPlace) error {
		if p.PointMismatch() {
			result.MismatchIDs = append(result.MismatchIDs, p.ID)
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("collect mismatched records: %w", err)
	}

	if opts.DryRun || len(result.MismatchIDs) == 0 {
		return result, nil
	}

	for start := 0; start < len(result.MismatchIDs); start += uc.chunkSize() {
		end := start + uc.chunkSize()
		if end > len(result.MismatchIDs) {
			end = len(result.MismatchIDs)
		}
		n, err := uc.store.RederiveGeometry(ctx, scope.Kind, result.MismatchIDs[start:end])
		result.Rederived += n
		if err != nil {
			uc.logger.Error("Failed to rederive geometry",
				zap.String("kind", string(scope.Kind)),
				zap.Int("chunk_start", start),
				zap.Error(err))
			return result, fmt.Errorf("rederive geometry: %w", err)
		}
	}

	uc.logger.Info("Geometry rederived from scalars",
		zap.String("kind", string(scope.Kind)),
		zap.Int64("rederived", result.Rederived))

	return result, nil
}

func (uc *ConsistencyUseCase) chunkSize() int {
	if uc.batchSize <= 0 {
		return DefaultScanBatchSize
	}
	return uc.batchSize
}
