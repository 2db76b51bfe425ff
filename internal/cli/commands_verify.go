package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/usecase"
)

type verifyResult struct {
	Report *domain.AuditReport `json:"report"`
	Fix    *usecase.FixResult  `json:"fix,omitempty"`
	After  *domain.AuditReport `json:"after,omitempty"`
}

func newVerifyCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report coordinate defects; with --fix repair them and re-derive geometry.",
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
			fix, _ := cmd.Flags().GetBool("fix")
			selection, dryRun := selectionFlags(cmd)
			previewCap, _ := cmd.Flags().GetInt("preview-cap")

			var repairUC *usecase.RepairUseCase
			if fix {
				if repairUC, err = newRepairUseCase(cmd, deps); err != nil {
					return err
				}
			}
			consistencyUC := usecase.NewConsistencyUseCase(deps.Store, repairUC, deps.logger(), deps.BatchSize)

			ctx := cmd.Context()
			result := verifyResult{}
			out := cmd.OutOrStdout()

			result.Report, err = consistencyUC.Check(ctx, scope)
			if err != nil {
				return err
			}
			if format == formatText {
				renderAuditReport(out, result.Report)
			}

			if !fix {
				if format == formatJSON {
					return writeJSON(out, result)
				}
				if result.Report.NeedsFix() {
					_, _ = fmt.Fprintln(out, "\nRun with --fix to repair invalid and (0, 0) coordinates and re-derive mismatched geometry.")
				}
				return nil
			}

			result.Fix, err = consistencyUC.Fix(ctx, scope, usecase.FixOptions{Selection: selection, DryRun: dryRun})
			if format == formatText && result.Fix != nil {
				_, _ = fmt.Fprintln(out)
				renderFixResult(out, result.Fix, previewCap)
			}
			if err != nil {
				if format == formatJSON {
					_ = writeJSON(out, result)
				}
				return err
			}

			if !dryRun {
				result.After, err = consistencyUC.Check(ctx, scope)
				if err != nil {
					return err
				}
				if format == formatText {
					_, _ = fmt.Fprintln(out)
					_, _ = fmt.Fprintln(out, "After fix:")
					renderAuditReport(out, result.After)
				}
			}

			if format == formatJSON {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			}
			if result.Fix.Repair != nil && result.Fix.Repair.Failed > 0 {
				return &exitError{code: 3}
			}
			return nil
		},
	}
	cmd.Flags().Bool("fix", false, "Repair fixable defects after reporting.")
	addSelectionFlags(cmd)
	addRepairFlags(cmd, deps)
	return cmd
}
