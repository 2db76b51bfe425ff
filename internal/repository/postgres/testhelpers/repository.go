package testhelpers

import (
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewGeoRecordRepositoryForTest creates a geo record repository with test database and logger
func NewGeoRecordRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.GeoRecordRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewGeoRecordRepository(pgDB)
}
