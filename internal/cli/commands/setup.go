// Package commands implements the leapcrawl subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcrawl/internal/cli/output"
	"github.com/leapstack-labs/leapcrawl/internal/config"
	"github.com/leapstack-labs/leapcrawl/pkg/adapter"
	"github.com/spf13/cobra"
)

var errNoTarget = errors.New("no target configured (set target.type in leapcrawl.yaml or pass --type)")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from what the root command
// stored in the cobra context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// NewAdapter creates the configured adapter without connecting it.
func (c *CommandContext) NewAdapter() (adapter.Adapter, error) {
	if c.Cfg.Target == nil {
		return nil, errNoTarget
	}
	if err := c.Cfg.Target.Validate(); err != nil {
		return nil, err
	}
	factory, _ := adapter.Get(c.Cfg.Target.Type)
	return factory(c.Logger), nil
}

// Connect creates and connects the configured adapter. The returned cleanup
// closes it and must be called once the command is done.
func (c *CommandContext) Connect(ctx context.Context) (adapter.Adapter, func(), error) {
	adp, err := c.NewAdapter()
	if err != nil {
		return nil, nil, err
	}
	if err := adp.Connect(ctx, c.Cfg.Target.ToAdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", adp.DialectName(), err)
	}
	cleanup := func() {
		if err := adp.Close(); err != nil {
			c.Logger.Warn("failed to close adapter", slog.String("error", err.Error()))
		}
	}
	return adp, cleanup, nil
}
