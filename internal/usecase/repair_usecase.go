package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/pkg/metrics"
)

// RepairRequest - параметры запуска ремонта координат
type RepairRequest struct {
	Kind      domain.RecordKind
	Selection domain.RepairSelection
	DryRun    bool
	FromID    *int64
	ToID      *int64
}

// RepairUseCase - замена дефектных координат случайной точкой внутри эталонного региона
type RepairUseCase struct {
	store      repository.GeoRecordRepository
	cacheRepo  repository.CacheRepository
	streamRepo repository.StreamRepository
	regions    domain.RegionSet
	logger     *zap.Logger
	batchSize  int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRepairUseCase - создание нового RepairUseCase.
// cacheRepo и streamRepo могут быть nil; rng задаёт воспроизводимость предпросмотра.
func NewRepairUseCase(
	store repository.GeoRecordRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	regions domain.RegionSet,
	rng *rand.Rand,
	logger *zap.Logger,
	batchSize int,
) *RepairUseCase {
	if rng == nil {
		rng = NewRandom(0)
	}
	return &RepairUseCase{
		store:      store,
		cacheRepo:  cacheRepo,
		streamRepo: streamRepo,
		regions:    regions,
		rng:        rng,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// NewRandom создает источник случайных чисел; seed 0 - случайный seed
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Run строит план и, если это не предпросмотр, применяет его.
// Сводка возвращается всегда, в том числе вместе с ошибкой чтения.
func (uc *RepairUseCase) Run(ctx context.Context, req RepairRequest) (*domain.RepairSummary, error) {
	summary, err := uc.Plan(ctx, req)
	if err != nil || req.DryRun {
		summary.FinishedAt = time.Now().UTC()
		return summary, err
	}

	uc.apply(ctx, summary)
	summary.FinishedAt = time.Now().UTC()

	uc.logger.Info("Coordinate repair finished",
		zap.String("run_id", summary.RunID.String()),
		zap.String("kind", string(summary.Kind)),
		zap.Int("proposed", len(summary.Proposals)),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed))

	if summary.Updated > 0 {
		uc.afterApply(ctx, summary)
	}

	return summary, nil
}

// Plan находит записи выборки и предлагает им новые координаты без записи в хранилище
func (uc *RepairUseCase) Plan(ctx context.Context, req RepairRequest) (*domain.RepairSummary, error) {
	summary := &domain.RepairSummary{
		RunID:     uuid.New(),
		Kind:      req.Kind,
		Selection: req.Selection,
		DryRun:    req.DryRun,
		Proposals: []domain.RepairProposal{},
		StartedAt: time.Now().UTC(),
	}

	if !validKind(req.Kind) {
		return summary, fmt.Errorf("unsupported record kind %q", req.Kind)
	}
	if uc.regions.Len() == 0 {
		return summary, errors.New("reference regions are not configured")
	}

	err := scanAll(ctx, uc.store, repository.ScanQuery{
		Kind:        req.Kind,
		FromID:      req.FromID,
		ToID:        req.ToID,
		ScalarsOnly: true,
	}, uc.batchSize, func(p *domain.GeoPlace) error {
		c := domain.ClassifyRecord(&p.GeoRecord)
		if !req.Selection.Matches(c) {
			return nil
		}
		summary.Proposals = append(summary.Proposals, uc.propose(&p.GeoRecord, c.Primary))
		return nil
	})
	if err != nil {
		uc.logger.Error("Failed to collect records for repair",
			zap.String("kind", string(req.Kind)),
			zap.Int("collected", len(summary.Proposals)),
			zap.Error(err))
		return summary, fmt.Errorf("collect records for repair: %w", err)
	}

	return summary, nil
}

// propose выбирает регион и точку в нём равномерно и независимо для каждой записи
func (uc *RepairUseCase) propose(rec *domain.GeoRecord, category domain.DefectCategory) domain.RepairProposal {
	uc.mu.Lock()
	region := uc.regions.At(uc.rng.IntN(uc.regions.Len()))
	lat := region.Lat.Min + uc.rng.Float64()*(region.Lat.Max-region.Lat.Min)
	lng := region.Lng.Min + uc.rng.Float64()*(region.Lng.Max-region.Lng.Min)
	uc.mu.Unlock()

	return domain.RepairProposal{
		RecordID:     rec.ID,
		Kind:         rec.Kind,
		Category:     category,
		OldLatitude:  rec.Latitude,
		OldLongitude: rec.Longitude,
		NewLatitude:  lat,
		NewLongitude: lng,
		Region:       region.Name,
	}
}

// apply пишет каждую запись отдельно; ошибка одной записи не прерывает остальные
func (uc *RepairUseCase) apply(ctx context.Context, summary *domain.RepairSummary) {
	for _, p := range summary.Proposals {
		err := uc.store.SaveCoordinates(ctx, p.Record())
		if err != nil {
			uc.logger.Error("Failed to repair record coordinates",
				zap.String("kind", string(p.Kind)),
				zap.Int64("record_id", p.RecordID),
				zap.Error(err))
			metrics.RepairOutcomes.WithLabelValues(string(p.Kind), "failed").Inc()
		} else {
			metrics.RepairOutcomes.WithLabelValues(string(p.Kind), "updated").Inc()
		}
		summary.AddOutcome(domain.RepairOutcome{Proposal: p, Err: err})
	}
}

// afterApply сбрасывает кеш поиска и публикует события; ошибки только логируются
func (uc *RepairUseCase) afterApply(ctx context.Context, summary *domain.RepairSummary) {
	if uc.cacheRepo != nil {
		if _, err := uc.cacheRepo.DeleteByPrefix(ctx, SearchCacheKindPrefix(summary.Kind)); err != nil {
			uc.logger.Warn("Failed to invalidate search cache after repair", zap.Error(err))
		}
	}

	if uc.streamRepo == nil {
		return
	}

	repairedAt := summary.FinishedAt
	for _, o := range summary.Outcomes {
		if !o.Succeeded() {
			continue
		}
		event := &domain.CoordinatesRepairedEvent{
			EventID:      uuid.New(),
			RunID:        summary.RunID,
			Kind:         o.Proposal.Kind,
			RecordID:     o.Proposal.RecordID,
			OldLatitude:  o.Proposal.OldLatitude,
			OldLongitude: o.Proposal.OldLongitude,
			NewLatitude:  o.Proposal.NewLatitude,
			NewLongitude: o.Proposal.NewLongitude,
			Region:       o.Proposal.Region,
			RepairedAt:   repairedAt,
		}
		if err := uc.streamRepo.PublishToStream(ctx, domain.StreamCoordinatesRepaired, event); err != nil {
			uc.logger.Warn("Failed to publish repaired event",
				zap.Int64("record_id", o.Proposal.RecordID),
				zap.Error(err))
		}
	}
}
