package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaskadlabs/kaskad/internal/engine"
)

// NewValidateCmd создаёт команду `kaskad validate FILE`:
// разбор и валидация определения workflow без выполнения.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Parse and validate a workflow definition without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			wf, err := engine.ParseFile(args[0])
			if err != nil {
				return err
			}
			if err := engine.Validate(wf); err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(map[string]any{
					"workflow": wf.Name,
					"steps":    wf.Size(),
					"valid":    true,
				})
				return nil
			}

			out.Success(fmt.Sprintf("Workflow %q is valid: %d steps, no cycles", wf.Name, wf.Size()))
			return nil
		},
	}
}
