package internal

import (
	"github.com/spf13/cobra"
)

var validateSkipBuild bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the module descriptors of the built archives",
	Long: `Validate builds the project and runs jdeps against every modular archive,
checking the module descriptor for each packaged Java version.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipBuild, "no-build", false, "Validate the existing archives")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, p, b, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if !validateSkipBuild {
		if err := b.Build(ctx, p); err != nil {
			return err
		}
	}
	return b.Validate(ctx, p)
}
