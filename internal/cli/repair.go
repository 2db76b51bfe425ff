package cli

import (
	"github.com/spf13/cobra"

	"github.com/estate-geo-service/internal/pkg/regions"
	"github.com/estate-geo-service/internal/usecase"
)

// addRepairFlags - параметры генерации новых координат
func addRepairFlags(cmd *cobra.Command, deps Dependencies) {
	cmd.Flags().Uint64("seed", deps.Seed, "Random seed for reproducible proposals (0 picks a random seed).")
	cmd.Flags().String("regions", deps.RegionsFile, "JSON file with reference regions (built-in US cities when empty).")
	cmd.Flags().Int("preview-cap", previewCapOrDefault(deps.PreviewCap), "Maximum proposals printed before summarizing.")
}

func previewCapOrDefault(v int) int {
	if v <= 0 {
		return 10
	}
	return v
}

// newRepairUseCase собирает ремонт из флагов команды
func newRepairUseCase(cmd *cobra.Command, deps Dependencies) (*usecase.RepairUseCase, error) {
	path, _ := cmd.Flags().GetString("regions")
	set, err := regions.LoadFile(path)
	if err != nil {
		return nil, err
	}

	seed, _ := cmd.Flags().GetUint64("seed")
	return usecase.NewRepairUseCase(
		deps.Store,
		deps.Cache,
		deps.Streams,
		set,
		usecase.NewRandom(seed),
		deps.logger(),
		deps.BatchSize,
	), nil
}
