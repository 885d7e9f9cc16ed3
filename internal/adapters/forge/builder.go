package forge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Builder compiles the project with forge before artifacts are read
type Builder struct {
	log         *slog.Logger
	projectRoot string
	namespace   string
	debug       bool
	stdout      io.Writer
}

// NewBuilder creates a new forge builder
func NewBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return &Builder{
		log:         log.With("component", "ForgeBuilder"),
		projectRoot: cfg.ProjectRoot,
		namespace:   cfg.Namespace,
		debug:       cfg.Debug,
		stdout:      os.Stdout,
	}
}

// Build runs forge build. In debug mode the compiler output is streamed through a pty
// so forge keeps its colours; otherwise it is only shown when the build fails.
func (b *Builder) Build(ctx context.Context) error {
	start := time.Now()
	b.log.Debug("running forge build", "dir", b.projectRoot, "profile", b.namespace)

	cmd := exec.CommandContext(ctx, "forge", "build")
	cmd.Dir = b.projectRoot
	cmd.Env = b.buildEnv()

	if b.debug {
		return b.stream(cmd, start)
	}

	output, err := cmd.CombinedOutput()
	duration := time.Since(start)
	if err != nil {
		b.log.Error("forge build failed", "error", err, "duration", duration)
		return fmt.Errorf("forge build failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}

	b.log.Debug("forge build completed successfully", "duration", duration)
	return nil
}

func (b *Builder) stream(cmd *exec.Cmd, start time.Time) error {
	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	// The pty returns EIO once the child exits
	_, _ = io.Copy(b.stdout, ptyFile)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("forge build failed: %w", err)
	}

	b.log.Debug("forge build completed successfully", "duration", time.Since(start))
	return nil
}

// buildEnv selects the foundry profile matching the namespace
func (b *Builder) buildEnv() []string {
	env := os.Environ()
	if b.namespace != "" {
		env = append(env, "FOUNDRY_PROFILE="+b.namespace)
	}
	return env
}

var _ usecase.ContractBuilder = (*Builder)(nil)
