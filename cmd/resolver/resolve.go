package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/upb/capability-resolver/repositories/memory"
	"github.com/upb/capability-resolver/services/catalog"
	"github.com/upb/capability-resolver/services/routing"
	"go.uber.org/zap"
)

type resolveOptions struct {
	categories    []string
	strategy      string
	providersFile string
	catalogFile   string
	output        string
	verbose       bool
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve --providers FILE --categories posts,photos",
		Short: "Resolve content categories against a provider file",
		Long: `Resolve content categories against the providers listed in a YAML file
and print the diagnostic report.

The command exits non-zero only on invalid input. Capabilities no provider
can serve are reported as unresolved.`,
		Example: `  resolver resolve --providers providers.yaml --categories posts,photos,reels
  resolver resolve --providers providers.yaml --categories podcasts --strategy cost_efficient -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.categories, "categories", "c", nil, "Content categories to analyze (comma separated or repeated)")
	flags.StringVarP(&opts.strategy, "strategy", "s", string(routing.StrategyMultimodal), "Resolution strategy: multimodal, cost_efficient or quality")
	flags.StringVarP(&opts.providersFile, "providers", "p", "", "YAML file listing the provider candidates")
	flags.StringVar(&opts.catalogFile, "catalog", "", "YAML file overriding the built-in model catalog")
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log unresolved capabilities to stderr")
	_ = cmd.MarkFlagRequired("providers")
	_ = cmd.MarkFlagRequired("categories")

	return cmd
}

func runResolve(ctx context.Context, out io.Writer, opts *resolveOptions) error {
	if len(opts.categories) == 0 {
		return errors.New("at least one content category is required")
	}
	if opts.output != "text" && opts.output != "json" {
		return fmt.Errorf("unsupported output format %q", opts.output)
	}

	strategy, err := routing.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if opts.catalogFile != "" {
		if cat, err = catalog.LoadFile(opts.catalogFile); err != nil {
			return err
		}
	}

	providers, err := memory.LoadFile(opts.providersFile)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	repo := memory.NewProviderRepository(logger)
	if err := repo.Seed(ctx, providers); err != nil {
		return err
	}

	cfg := routing.DefaultRoutingConfig()
	cfg.DefaultStrategy = strategy
	cfg.EnableFallbackWarnings = opts.verbose

	result, err := routing.NewRoutingService(cfg, cat, repo, logger).
		ResolveScenario(ctx, routing.Scenario{ContentCategories: opts.categories})
	if err != nil {
		return err
	}

	if opts.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*routing.ResolveResult
			Complete bool `json:"complete"`
		}{result, result.Complete()})
	}

	_, err = io.WriteString(out, result.Report)
	return err
}
