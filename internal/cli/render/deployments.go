package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

var (
	chainHeader     = color.New(color.BgCyan, color.FgBlack)
	chainHeaderBold = color.New(color.BgCyan, color.FgBlack, color.Bold)
	contractStyle   = color.New(color.FgGreen, color.Bold)
	idStyle         = color.New(color.Faint)
)

// DeploymentsRenderer renders the registry as one tree branch per chain
type DeploymentsRenderer struct {
	out io.Writer
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer) *DeploymentsRenderer {
	return &DeploymentsRenderer{out: out}
}

// RenderDeploymentList prints each chain's records as an aligned table under a
// chain header, followed by totals per verification status
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	byChain := lo.GroupBy(result.Deployments, func(d *models.Deployment) uint64 { return d.ChainID })
	chainIDs := lo.Keys(byChain)
	slices.Sort(chainIDs)

	// One set of widths for every chain keeps the columns lined up down the tree
	rows := lo.Map(chainIDs, func(chainID uint64, _ int) [][]string { return deploymentRows(byChain[chainID]) })
	widths := columnWidths(lo.Flatten(rows))

	for i, chainID := range chainIDs {
		branch, indent := "├─", "│ "
		if i == len(chainIDs)-1 {
			branch, indent = "└─", "  "
		}

		label := fmt.Sprintf("%d (%s)", chainID, byChain[chainID][0].Network)
		fmt.Fprintf(r.out, "%s%s%s\n", branch, chainHeader.Sprint(" ⛓ chain: "), chainHeaderBold.Sprintf("%-30s", label))
		fmt.Fprintln(r.out, indent)
		fmt.Fprintln(r.out, alignedTable(rows[i], widths, indent))
		fmt.Fprintln(r.out, indent)
	}

	fmt.Fprintf(r.out, "Total deployments: %d%s\n", result.Summary.Total, statusBreakdown(result.Summary.ByStatus))
	return nil
}

func deploymentRows(deployments []*models.Deployment) [][]string {
	return lo.Map(deployments, func(d *models.Deployment, _ int) []string {
		return []string{
			contractStyle.Sprint(d.ContractName),
			d.Address,
			FormatStatus(d.Verification.Status),
			idStyle.Sprint(d.ID),
			idStyle.Sprint(d.CreatedAt.Format("2006-01-02 15:04")),
		}
	})
}

// statusBreakdown renders " (2 verified, 1 unverified)" in a fixed status order
func statusBreakdown(byStatus map[models.VerificationStatus]int) string {
	order := []models.VerificationStatus{
		models.VerificationStatusVerified,
		models.VerificationStatusSubmitted,
		models.VerificationStatusUnverified,
		models.VerificationStatusFailed,
		models.VerificationStatusSkipped,
	}

	parts := lo.FilterMap(order, func(status models.VerificationStatus, _ int) (string, bool) {
		n := byStatus[status]
		return fmt.Sprintf("%d %s", n, strings.ToLower(string(status))), n > 0
	})
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// alignedTable renders rows without borders, each line prefixed by the tree indent
func alignedTable(rows [][]string, widths []int, indent string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options = table.OptionsNoBordersAndSeparators
	t.Style().Box.PaddingLeft = ""
	t.Style().Box.PaddingRight = "   "

	t.SetColumnConfigs(lo.Map(widths, func(width, i int) table.ColumnConfig {
		return table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, WidthMin: width, WidthMax: width}
	}))
	for _, row := range rows {
		t.AppendRow(lo.Map(row, func(cell string, _ int) any { return cell }))
	}

	lines := strings.Split(t.Render(), "\n")
	return indent + strings.Join(lines, "\n"+indent)
}

// columnWidths returns the widest visible cell per column, ignoring colour codes
func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], text.RuneWidthWithoutEscSequences(cell))
		}
	}
	return widths
}
