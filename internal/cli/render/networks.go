package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList renders the configured networks with their resolved chain ids
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in foundry.toml [rpc_endpoints]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "Explorer"})

	for _, network := range result.Networks {
		if network.Error != nil {
			t.AppendRow(table.Row{"❌", network.Name, "-", color.New(color.FgRed).Sprintf("Error: %v", network.Error)})
			continue
		}

		name := network.Name
		if network.Local {
			name += color.New(color.Faint).Sprint(" (local)")
		}
		t.AppendRow(table.Row{"✅", name, network.ChainID, network.ExplorerURL})
	}

	t.Render()
	return nil
}
