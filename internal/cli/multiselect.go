package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/domain/models"
)

// multiSelectModel is the bubbletea model for picking deployments
type multiSelectModel struct {
	deployments []*models.Deployment
	cursor      int
	selected    map[int]bool
	title       string
	done        bool
	cancelled   bool
}

func initialMultiSelectModel(deployments []*models.Deployment, title string) multiSelectModel {
	return multiSelectModel{
		deployments: deployments,
		selected:    make(map[int]bool),
		title:       title,
	}
}

// Init is the initial command for bubbletea
func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses
func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.deployments)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := len(m.selectedIndices()) < len(m.deployments)
		for i := range m.deployments {
			m.selected[i] = all
		}
	case "enter":
		if len(m.selectedIndices()) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the list
func (m multiSelectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, dep := range m.deployments {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}

		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}

		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			cursor,
			checkbox,
			color.New(color.FgYellow).Sprintf("chain:%d/%s", dep.ChainID, dep.ContractName),
			color.New(color.FgWhite).Sprint(dep.Address),
			render.FormatStatus(dep.Verification.Status),
		)
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))

	return b.String()
}

func (m multiSelectModel) selectedIndices() []int {
	var indices []int
	for i := range m.deployments {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

// selectDeployments shows a multi-select over the deployments and returns the chosen ones
func selectDeployments(deployments []*models.Deployment, title string) ([]*models.Deployment, error) {
	if len(deployments) == 0 {
		return nil, fmt.Errorf("no deployments to select")
	}

	finalModel, err := tea.NewProgram(initialMultiSelectModel(deployments, title)).Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := finalModel.(multiSelectModel)
	if !m.done {
		return nil, fmt.Errorf("selection cancelled")
	}

	chosen := make([]*models.Deployment, 0, len(m.selected))
	for _, i := range m.selectedIndices() {
		chosen = append(chosen, deployments[i])
	}
	return chosen, nil
}
