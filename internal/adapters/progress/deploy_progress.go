package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// DeployProgress reports deploy workflow progress.
// Interactive terminals get a spinner for the running stage, otherwise only the log lines are written.
type DeployProgress struct {
	out         io.Writer
	interactive bool

	mu      sync.Mutex
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Stage     string
	StartTime time.Time
	EndTime   time.Time
}

// NewDeployProgress creates a progress reporter writing to out
func NewDeployProgress(out io.Writer, interactive bool) *DeployProgress {
	return &DeployProgress{
		out:         out,
		interactive: interactive,
	}
}

// OnProgress records stage transitions and drives the spinner
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enterStage(event.Stage)

	if !p.interactive {
		return
	}

	if event.Spinner {
		if p.spinner == nil {
			p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			p.spinner.Writer = p.out
			p.spinner.HideCursor = false
			_ = p.spinner.Color("cyan", "bold")
		}
		p.spinner.Suffix = " " + event.Message
		if !p.spinner.Active() {
			p.spinner.Start()
		}
		return
	}

	p.stopSpinner()
	if event.Stage == string(usecase.StageCompleted) {
		fmt.Fprintln(p.out, p.summary())
	}
}

// Info prints a progress line. A running spinner is stopped first so the prompt
// or line that follows starts on a clean terminal line.
func (p *DeployProgress) Info(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	if p.interactive {
		color.New(color.FgCyan).Fprintln(p.out, message)
		return
	}
	fmt.Fprintln(p.out, message)
}

// Error prints an error line
func (p *DeployProgress) Error(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	if p.interactive {
		color.New(color.FgRed).Fprintln(p.out, message)
		return
	}
	fmt.Fprintln(p.out, message)
}

// Stop halts the spinner, e.g. when the workflow ends with an error
func (p *DeployProgress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
}

func (p *DeployProgress) stopSpinner() {
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}

func (p *DeployProgress) enterStage(stage string) {
	if stage == "" {
		return
	}
	now := time.Now()
	if n := len(p.stages); n > 0 {
		if p.stages[n-1].Stage == stage {
			return
		}
		p.stages[n-1].EndTime = now
	}
	p.stages = append(p.stages, stageInfo{Stage: stage, StartTime: now})
}

// summary renders the completed stages, e.g. "✓ Signer (2ms) → ✓ Artifact (40ms)"
func (p *DeployProgress) summary() string {
	parts := make([]string, 0, len(p.stages))
	green := color.New(color.FgGreen)

	for _, stage := range p.stages {
		if stage.Stage == string(usecase.StageCompleted) {
			continue
		}
		duration := ""
		if !stage.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		}
		parts = append(parts, fmt.Sprintf("%s %s%s", green.Sprint("✓"), stage.Stage, duration))
	}
	return strings.Join(parts, " → ")
}

// Stages returns the stage names seen so far, in order
func (p *DeployProgress) Stages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Stage
	}
	return names
}

var _ usecase.ProgressSink = (*DeployProgress)(nil)
