package cli

import (
	"github.com/spf13/cobra"

	"github.com/estate-geo-service/internal/usecase"
)

func newRepairCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Replace invalid and (0, 0) coordinates with points inside reference regions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			scope, err := scopeFlags(cmd)
			if err != nil {
				return err
			}
			selection, dryRun := selectionFlags(cmd)
			previewCap, _ := cmd.Flags().GetInt("preview-cap")

			repairUC, err := newRepairUseCase(cmd, deps)
			if err != nil {
				return err
			}

			summary, runErr := repairUC.Run(cmd.Context(), usecase.RepairRequest{
				Kind:      scope.Kind,
				Selection: selection,
				DryRun:    dryRun,
				FromID:    scope.FromID,
				ToID:      scope.ToID,
			})

			out := cmd.OutOrStdout()
			if format == formatJSON {
				if err := writeJSON(out, summary); err != nil {
					return err
				}
			} else {
				renderRepairSummary(out, summary, previewCap)
			}

			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return &exitError{code: 3}
			}
			return nil
		},
	}
	addSelectionFlags(cmd)
	addRepairFlags(cmd, deps)
	return cmd
}
