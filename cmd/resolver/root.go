package main

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resolver",
		Short: "Capability resolver for content analysis providers",
		Long: `resolver derives the analysis capabilities a set of content categories
needs and binds each of them to a registered provider.

Run "resolver serve" for the HTTP API or "resolver resolve" for a one-off
resolution against a provider file.`,
		Version:      version(),
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newResolveCmd())
	return root
}

// version returns the module version from build info
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(unknown version)"
}
