package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/connect"
	"github.com/matzehuels/graphedit/pkg/deletion"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/store"
)

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the nodes and edges of the saved graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			g, rev := s.editor.Snapshot()
			printKeyValue("Storage", s.cfg.Storage.Backend+" "+StyleDim.Render(s.cfg.Storage.Key))
			printGraphSummary(g, rev)
			if g.IsEmpty() {
				printNewline()
				printNextStep("Add a node", appName+" add --label hello")
				return nil
			}
			printNewline()
			fmt.Fprintln(stdout, nodeTable(g))
			if g.EdgeCount() > 0 {
				fmt.Fprintln(stdout, edgeTable(g))
			}
			return nil
		},
	}
}

// =============================================================================
// add / connect
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		x, y  float64
		label string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.editor.AddLabeledNode(graph.Position{X: x, Y: y}, label)
			if err != nil {
				return err
			}
			printSuccess("Added node %s", StyleHighlight.Render(n.ID))
			printDetail("%q at %g, %g", n.Label(), n.Position.X, n.Position.Y)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x position")
	cmd.Flags().Float64Var(&y, "y", 0, "y position")
	cmd.Flags().StringVar(&label, "label", graph.DefaultNodeLabel, "node label")
	return cmd
}

var handles = []string{
	graph.HandleTop, graph.HandleBottom, graph.HandleLeft, graph.HandleRight,
	graph.HandleTopSource, graph.HandleBottomSource, graph.HandleLeftSource, graph.HandleRightSource,
}

func (c *CLI) connectCommand() *cobra.Command {
	var conn connect.Connection
	cmd := &cobra.Command{
		Use:               "connect <source> <target>",
		Short:             "Connect two nodes with a labelled edge",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn.Source, conn.Target = args[0], args[1]
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.editor.Connect(conn)
			if err != nil {
				return err
			}
			printSuccess("Connected %s", describeEdge(e))
			printDetail("%s %q", e.ID, e.Label)
			return nil
		},
	}
	cmd.Flags().StringVar(&conn.SourceHandle, "source-handle", "", "handle on the source node")
	cmd.Flags().StringVar(&conn.TargetHandle, "target-handle", "", "handle on the target node")
	for _, f := range []string{"source-handle", "target-handle"} {
		_ = cmd.RegisterFlagCompletionFunc(f, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return handles, cobra.ShellCompDirectiveNoFileComp
		})
	}
	return cmd
}

// =============================================================================
// delete
// =============================================================================

func (c *CLI) deleteCommand() *cobra.Command {
	var nodeIDs, edgeIDs []string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete nodes and edges along with their connections",
		Long: `Select the given nodes and edges and press Delete. Edges attached to a
removed node are removed with it. Without flags the current selection is
deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(nodeIDs) > 0 || len(edgeIDs) > 0 {
				g, _ := s.editor.Snapshot()
				nodes, edges, err := selectionChanges(g, nodeIDs, edgeIDs)
				if err != nil {
					return err
				}
				if err := s.editor.ApplyNodeChanges(nodes); err != nil {
					return err
				}
				if err := s.editor.ApplyEdgeChanges(edges); err != nil {
					return err
				}
			}

			plan, _, err := s.editor.HandleKey(cmd.Context(), deletion.DeleteKey)
			if err != nil {
				return err
			}
			if plan.IsEmpty() {
				printInfo("Nothing selected")
				return nil
			}
			printSuccess("Deleted %s and %s", plural(len(plan.NodeIDs), "node"), plural(len(plan.EdgeIDs), "edge"))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&nodeIDs, "node", nil, "node id to delete (repeatable)")
	cmd.Flags().StringSliceVar(&edgeIDs, "edge", nil, "edge id to delete (repeatable)")
	c.registerSelectionCompletion(cmd, &nodeIDs, &edgeIDs)
	return cmd
}

// selectionChanges builds the batches that leave exactly the given ids
// selected.
func selectionChanges(g graph.Graph, nodeIDs, edgeIDs []string) ([]store.NodeChange, []store.EdgeChange, error) {
	for _, id := range nodeIDs {
		if _, ok := g.Node(id); !ok {
			return nil, nil, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
		}
	}
	for _, id := range edgeIDs {
		if _, ok := g.Edge(id); !ok {
			return nil, nil, errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", id)
		}
	}

	var nodes []store.NodeChange
	for _, n := range g.Nodes {
		if want := slices.Contains(nodeIDs, n.ID); want != n.Selected {
			nodes = append(nodes, store.SelectNode(n.ID, want))
		}
	}
	var edges []store.EdgeChange
	for _, e := range g.Edges {
		if want := slices.Contains(edgeIDs, e.ID); want != e.Selected {
			edges = append(edges, store.SelectEdge(e.ID, want))
		}
	}
	return nodes, edges, nil
}

// =============================================================================
// label
// =============================================================================

func (c *CLI) labelCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "label node|edge <id> <text>",
		Short:             "Set the label of a node or edge",
		Args:              cobra.MatchAll(cobra.ExactArgs(3), validKind),
		ValidArgsFunction: c.completeLabelArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, text := args[0], args[1], args[2]
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ed := s.editor
			switch kind {
			case "node":
				if _, err := ed.BeginEdit(id); err != nil {
					return err
				}
				if err := ed.EditInput(id, text); err != nil {
					return err
				}
				if err := ed.CommitEdit(id); err != nil {
					return err
				}
			case "edge":
				if _, err := ed.OpenEdgePrompt(id); err != nil {
					return err
				}
				if err := ed.CommitEdgePromptFor(id, text); err != nil {
					return err
				}
			}
			printSuccess("Labelled %s %s %q", kind, StyleHighlight.Render(id), text)
			return nil
		},
	}
}

func validKind(cmd *cobra.Command, args []string) error {
	if args[0] != "node" && args[0] != "edge" {
		return fmt.Errorf("first argument must be node or edge, got %q", args[0])
	}
	return nil
}

// =============================================================================
// clear / export / import
// =============================================================================

func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every node and edge and delete the saved graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.editor.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Graph cleared")
			return nil
		},
	}
}

func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the graph as JSON (default " + graph.ExportFilename + ", - for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := graph.ExportFilename
			if len(args) == 1 {
				path = args[0]
			}
			if path != "-" {
				if err := errors.ValidateExportFilename(filepath.Base(path)); err != nil {
					return err
				}
			}

			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if path == "-" {
				return s.editor.Export(cmd.Context(), cmd.OutOrStdout())
			}

			prog := newProgress(c.Logger)
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := s.editor.Export(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			g, _ := s.editor.Snapshot()
			prog.done("Exported graph", graphFields(g, "file", path)...)
			printSuccess("Exported %s", countSummary(g))
			printFile(path)
			return nil
		},
	}
}

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the graph with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			prog := newProgress(c.Logger)
			g, err := s.editor.Import(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("%s", errors.UserMessage(err))
			}
			prog.done("Imported graph", graphFields(g, "file", args[0])...)
			printSuccess("Imported %s", countSummary(g))
			printDangling(g)
			return nil
		},
	}
}
