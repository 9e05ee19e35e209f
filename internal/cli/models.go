package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmcheck/internal/model"
)

// ModelInfo describes one registered model.
type ModelInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Messages    []string        `json:"messages"`
	Contracts   model.Contracts `json:"contracts"`
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models scenarios can name",
		Long: `List every registered model with the message kinds it accepts and the
contracts it is checked against.

Examples:
  fsmcheck models
  fsmcheck models --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(rootOpts, cmd)
		},
	}
}

func runModels(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	models := opts.catalog().Models()
	infos := make([]ModelInfo, len(models))
	for i, m := range models {
		infos[i] = ModelInfo{
			Name:        m.Name(),
			Description: m.Description(),
			Messages:    m.MessageKinds(),
			Contracts:   m.Contracts(),
		}
	}

	if opts.Format == "json" {
		return out.OK(infos)
	}

	w := out.Writer
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s\n", info.Name, info.Description)
		fmt.Fprintf(w, "  messages:    %s\n", joinOrNone(info.Messages))
		fmt.Fprintf(w, "  states:      %s\n", joinOrNone(info.Contracts.States))
		fmt.Fprintf(w, "  transitions: %s\n", joinOrNone(info.Contracts.Transitions))
		fmt.Fprintf(w, "  invariants:  %d\n", info.Contracts.Invariants)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
