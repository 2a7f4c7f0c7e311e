package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/mrjar/internal/vcs"
)

var buildRequireClean bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project",
	Long:  `Build compiles every unit and its versioned variants and writes the multi-release archives.`,
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildRequireClean, "require-clean", false, "Fail if the project has uncommitted changes")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, p, b, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if buildRequireClean {
		if err := vcs.RequireClean(ctx, vcs.NewGitVCS(), p.Dir); err != nil {
			return err
		}
	}
	return b.Build(ctx, p)
}
