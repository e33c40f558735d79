package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/focusflow/internal/model"
)

func newAddCommand(flags *globalFlags, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), flags, deps, func(rt *runtime) error {
				t, ok := rt.session.AddTask(strings.Join(args, " "))
				if !ok {
					return model.ErrEmptyText
				}
				fmt.Fprintf(deps.Out, "added %s  %s\n", t.ID, t.Text)
				return nil
			})
		},
	}
}

func newListCommand(flags *globalFlags, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending then completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, deps, func(rt *runtime) error {
				part := rt.session.Tasks()
				writeSection(deps.Out, "Pending", part.Pending)
				writeSection(deps.Out, "Completed", part.Completed)
				return nil
			})
		},
	}
}

func writeSection(w io.Writer, title string, items []model.Task) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, t := range items {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %s  (%s)\n", box, t.Text, t.ID)
	}
}

func newBreakdownCommand(flags *globalFlags, deps Deps) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "breakdown <description...>",
		Short: "Break a task down into subtasks and add them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.Join(args, " ")
			return withRuntime(cmd.Context(), flags, deps, func(rt *runtime) error {
				if dryRun {
					items, err := rt.session.RequestBreakdown(cmd.Context(), desc)
					if err != nil {
						return err
					}
					for _, item := range items {
						fmt.Fprintf(deps.Out, "- %s\n", item)
					}
					return nil
				}
				added, err := rt.session.BreakDown(cmd.Context(), desc)
				if err != nil {
					return err
				}
				fmt.Fprintf(deps.Out, "added %d subtask(s):\n", len(added))
				for _, t := range added {
					fmt.Fprintf(deps.Out, "  [ ] %s  (%s)\n", t.Text, t.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the subtasks without adding them")
	return cmd
}
