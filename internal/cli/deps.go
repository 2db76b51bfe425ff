// Package cli - команды обслуживания координат (geofix verify / repair).
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain/repository"
)

// Dependencies - зависимости команд, создаются в cmd/geofix
type Dependencies struct {
	Store   repository.GeoRecordRepository
	Cache   repository.CacheRepository
	Streams repository.StreamRepository
	Logger  *zap.Logger

	// Значения по умолчанию для флагов (из конфигурации)
	RegionsFile string
	Seed        uint64
	PreviewCap  int
	BatchSize   int
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// exitError - завершение с кодом без дополнительного сообщения (итог уже напечатан)
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// Execute запускает CLI и возвращает код завершения
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, "Error:", msg)
	}
	return 1
}
