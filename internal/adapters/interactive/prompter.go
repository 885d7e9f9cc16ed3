package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed but the session cannot ask
var ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

// Prompter asks the user for confirmations and contract choices on the terminal
type Prompter struct {
	config *config.RuntimeConfig
}

// NewPrompter creates a new prompter
func NewPrompter(cfg *config.RuntimeConfig) *Prompter {
	return &Prompter{config: cfg}
}

// Confirm asks a yes/no question. Answering "n" is not an error.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	if p.config.NonInteractive {
		return false, ErrNonInteractive
	}

	prompt := promptui.Prompt{
		Label:     message,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
}

// SelectContract lets the user pick one fully-qualified name out of options
func (p *Prompter) SelectContract(ctx context.Context, prompt string, options []string) (string, error) {
	if p.config.NonInteractive {
		return "", ErrNonInteractive
	}

	switch len(options) {
	case 0:
		return "", fmt.Errorf("no contracts provided for selection")
	case 1:
		return options[0], nil
	}

	labels := formatContractOptions(options)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     labels,
		Templates: templates,
		Size:      10,
		Searcher:  fuzzySearcher(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}

	return options[index], nil
}

// formatContractOptions renders "path:Name" as "Name (path)"
func formatContractOptions(options []string) []string {
	labels := make([]string, len(options))
	for i, option := range options {
		path, name, found := strings.Cut(option, ":")
		if !found {
			labels[i] = option
			continue
		}
		labels[i] = fmt.Sprintf("%s (%s)",
			color.New(color.FgWhite, color.Bold).Sprint(name),
			color.New(color.FgBlue).Sprint(path))
	}
	return labels
}

// fuzzySearcher matches the search input against the uncoloured option text
func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.Confirmer        = (*Prompter)(nil)
	_ usecase.ContractSelector = (*Prompter)(nil)
)
