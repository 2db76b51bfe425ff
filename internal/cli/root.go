package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estate-geo-service/internal/domain"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// NewRootCommand собирает дерево команд
func NewRootCommand(deps Dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:           "geofix",
		Short:         "Audit and repair listing, school and POI coordinates.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("format", formatText, "Output format: text or json.")
	root.PersistentFlags().String("kind", string(domain.KindListing), "Record kind: listing, school or poi.")
	root.PersistentFlags().Int64("from-id", 0, "First record ID to include (inclusive).")
	root.PersistentFlags().Int64("to-id", 0, "Last record ID to include (inclusive).")

	root.AddCommand(newVerifyCommand(deps))
	root.AddCommand(newRepairCommand(deps))

	return root
}

// scopeFlags читает общие флаги области проверки
func scopeFlags(cmd *cobra.Command) (domain.AuditScope, error) {
	rawKind, _ := cmd.Flags().GetString("kind")
	kind, ok := domain.ParseRecordKind(strings.ToLower(strings.TrimSpace(rawKind)))
	if !ok {
		return domain.AuditScope{}, fmt.Errorf("unknown kind %q (expected listing, school or poi)", rawKind)
	}

	scope := domain.AuditScope{Kind: kind}
	if cmd.Flags().Changed("from-id") {
		v, _ := cmd.Flags().GetInt64("from-id")
		scope.FromID = &v
	}
	if cmd.Flags().Changed("to-id") {
		v, _ := cmd.Flags().GetInt64("to-id")
		scope.ToID = &v
	}
	if scope.FromID != nil && scope.ToID != nil && *scope.FromID > *scope.ToID {
		return domain.AuditScope{}, fmt.Errorf("--from-id %d is greater than --to-id %d", *scope.FromID, *scope.ToID)
	}
	return scope, nil
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatText, formatJSON:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

// addSelectionFlags - флаги выборки дефектов для ремонта
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Show proposed changes without writing.")
	cmd.Flags().Bool("zero-only", false, "Repair only records at exactly (0, 0).")
	cmd.Flags().Bool("include-us-invalid", false, "Also repair records outside the US bounding box.")
}

func selectionFlags(cmd *cobra.Command) (domain.RepairSelection, bool) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	zeroOnly, _ := cmd.Flags().GetBool("zero-only")
	includeOutOfRegion, _ := cmd.Flags().GetBool("include-us-invalid")
	return domain.RepairSelection{ZeroOnly: zeroOnly, IncludeOutOfRegion: includeOutOfRegion}, dryRun
}
