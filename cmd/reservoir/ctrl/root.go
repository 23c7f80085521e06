package ctrl

import (
	"github.com/openziti/reservoir/cmd/reservoir/reservoir"
	"github.com/spf13/cobra"
)

func init() {
	reservoir.RootCmd.AddCommand(ctrlCmd)
}

var ctrlCmd = &cobra.Command{
	Use:   "ctrl",
	Short: "Control metrics instruments",
}
