package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// ContractsRenderer renders the deployable artifacts in the build output
type ContractsRenderer struct {
	out io.Writer
}

// NewContractsRenderer creates a new contracts renderer
func NewContractsRenderer(out io.Writer) *ContractsRenderer {
	return &ContractsRenderer{out: out}
}

// RenderContracts lists contracts by fully-qualified name
func (r *ContractsRenderer) RenderContracts(contracts []*models.Contract) error {
	if len(contracts) == 0 {
		fmt.Fprintln(r.out, "No deployable contracts found. Compile first or pass --build.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(table.Row{"Contract", "Source", "Compiler", "Format"})

	for _, contract := range contracts {
		compiler := "-"
		if contract.Artifact != nil && contract.Artifact.CompilerVersion() != "" {
			compiler = contract.Artifact.CompilerVersion()
		}
		t.AppendRow(table.Row{
			contractStyle.Sprint(contract.Name),
			contract.Path,
			compiler,
			color.New(color.Faint).Sprint(string(contract.Format)),
		})
	}

	t.Render()
	fmt.Fprintf(r.out, "\n%d contracts\n", len(contracts))
	return nil
}
