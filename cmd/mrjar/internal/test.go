package internal

import (
	"github.com/spf13/cobra"
)

var testSkipBuild bool

var testCmd = &cobra.Command{
	Use:   "test [run...]",
	Short: "Build the project and run its tests",
	Long: `Test builds the project and executes the enabled test runs, or only the
named ones (e.g. "test", "testJava17").`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().BoolVar(&testSkipBuild, "no-build", false, "Run the tests against the existing build output")
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx, p, b, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if !testSkipBuild {
		if err := b.Build(ctx, p); err != nil {
			return err
		}
	}
	return b.Test(ctx, p, args...)
}
