package internal

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the build plan",
	Long: `Plan prints the derived variants, their classpaths and module patches, the
archive layouts, the outgoing variants and the test runs without compiling.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	_, p, _, err := loadProject(cmd)
	if err != nil {
		return err
	}
	return p.Describe(cmd.OutOrStdout())
}
