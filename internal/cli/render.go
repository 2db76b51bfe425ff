package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/usecase"
)

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatCoord(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.6f", *v)
}

func scopeLabel(scope domain.AuditScope) string {
	label := string(scope.Kind)
	switch {
	case scope.FromID != nil && scope.ToID != nil:
		label += fmt.Sprintf(" (ids %d..%d)", *scope.FromID, *scope.ToID)
	case scope.FromID != nil:
		label += fmt.Sprintf(" (ids >= %d)", *scope.FromID)
	case scope.ToID != nil:
		label += fmt.Sprintf(" (ids <= %d)", *scope.ToID)
	}
	return label
}

func renderAuditReport(out io.Writer, report *domain.AuditReport) {
	_, _ = fmt.Fprintf(out, "Coordinate audit: %s\n", scopeLabel(report.Scope))
	_, _ = fmt.Fprintf(out, "Total records: %d\n", report.Total)
	_, _ = fmt.Fprintf(out, "With coordinates: %d\n", report.WithCoordinates)

	for _, category := range domain.DefectCategories {
		bucket := report.Defects[category]
		_, _ = fmt.Fprintf(out, "%s: %d\n", category, bucket.Count)
		if bucket.Count == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "  ids: %s\n", joinIDs(bucket.Sample))
		if more := bucket.Count - len(bucket.Sample); more > 0 {
			_, _ = fmt.Fprintf(out, "  ...and %d more\n", more)
		}
	}
}

func joinIDs(ids []int64) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", id)
	}
	return s
}

func renderRepairSummary(out io.Writer, summary *domain.RepairSummary, previewCap int) {
	if summary == nil {
		return
	}
	mode := "apply"
	if summary.DryRun {
		mode = "dry run"
	}
	_, _ = fmt.Fprintf(out, "Coordinate repair (%s): %s, %d records selected\n", mode, summary.Kind, len(summary.Proposals))

	for i, p := range summary.Proposals {
		if i == previewCap {
			_, _ = fmt.Fprintf(out, "  ...and %d more\n", len(summary.Proposals)-previewCap)
			break
		}
		_, _ = fmt.Fprintf(out, "  #%d %s: (%s, %s) -> (%.6f, %.6f) %s\n",
			p.RecordID, p.Category,
			formatCoord(p.OldLatitude), formatCoord(p.OldLongitude),
			p.NewLatitude, p.NewLongitude, p.Region)
	}

	if summary.DryRun {
		_, _ = fmt.Fprintln(out, "No changes written (dry run).")
		return
	}

	_, _ = fmt.Fprintf(out, "Updated: %d\n", summary.Updated)
	_, _ = fmt.Fprintf(out, "Failed: %d\n", summary.Failed)
	for _, o := range summary.Outcomes {
		if !o.Succeeded() {
			_, _ = fmt.Fprintf(out, "  failed #%d: %v\n", o.Proposal.RecordID, o.Err)
		}
	}
}

func renderFixResult(out io.Writer, result *usecase.FixResult, previewCap int) {
	renderRepairSummary(out, result.Repair, previewCap)

	_, _ = fmt.Fprintf(out, "Geometry mismatches: %d\n", len(result.MismatchIDs))
	if len(result.MismatchIDs) == 0 {
		return
	}
	shown := result.MismatchIDs
	if len(shown) > previewCap {
		shown = shown[:previewCap]
	}
	_, _ = fmt.Fprintf(out, "  ids: %s\n", joinIDs(shown))
	if more := len(result.MismatchIDs) - len(shown); more > 0 {
		_, _ = fmt.Fprintf(out, "  ...and %d more\n", more)
	}
	if result.DryRun {
		return
	}
	_, _ = fmt.Fprintf(out, "Geometry re-derived from scalars: %d\n", result.Rederived)
}
