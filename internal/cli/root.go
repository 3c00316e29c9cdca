package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/internal/config"
	"github.com/matzehuels/graphedit/pkg/buildinfo"
	"github.com/matzehuels/graphedit/pkg/kv"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "graphedit edits node-link diagrams",
		Long:         `graphedit is a node-link graph editor. Nodes and labelled connections are kept in an auto-saved document that can be edited from the terminal, over HTTP, or exported and imported as JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	flags.StringVar(&c.backend, "backend", "", "storage backend ("+strings.Join(kv.Backends, ", ")+")")
	_ = root.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return kv.Backends, cobra.ShellCompDirectiveNoFileComp
	})

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.labelCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.completionCommand())

	return root
}
