package usecase

import (
	"context"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
)

// DefaultScanBatchSize - размер страницы при полном проходе по записям
const DefaultScanBatchSize = 1000

// scanAll проходит записи по возрастанию ID страницами по batchSize
func scanAll(
	ctx context.Context,
	store repository.GeoRecordRepository,
	q repository.ScanQuery,
	batchSize int,
	fn func(*domain.GeoPlace) error,
) error {
	if batchSize <= 0 {
		batchSize = DefaultScanBatchSize
	}
	q.Limit = batchSize

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := store.ScanPlaces(ctx, q)
		if err != nil {
			return err
		}

		for _, p := range batch {
			if err := fn(p); err != nil {
				return err
			}
		}

		if len(batch) < batchSize {
			return nil
		}
		q.AfterID = batch[len(batch)-1].ID
	}
}

// validKind проверяет поддерживаемый тип записей
func validKind(kind domain.RecordKind) bool {
	_, ok := domain.ParseRecordKind(string(kind))
	return ok
}
