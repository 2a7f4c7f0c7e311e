package internal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/goplus/mrjar/internal/build"
	"github.com/goplus/mrjar/internal/config"
	"github.com/goplus/mrjar/internal/env"
	"github.com/goplus/mrjar/internal/logger"
	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/pkgs/buildsys/javac"
)

var (
	projectFile   string
	projectDir    string
	jobs          int
	loggerOptions logger.Options
	log           logr.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mrjar",
	Short: "mrjar builds multi-release Java archives",
	Long: `mrjar compiles a Java project once per declared Java version and packs
the results into a single multi-release archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.NewLogger(loggerOptions)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&projectFile, "file", "f", config.DefaultFile, "Project descriptor")
	flags.StringVarP(&projectDir, "dir", "C", "", "Run as if started in this directory")
	flags.IntVarP(&jobs, "jobs", "j", 0, "Maximum number of units built at once (0 means one per CPU)")
	loggerOptions.BindFlags(flags)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if log.GetSink() == nil {
			log = logger.NewLogger(loggerOptions)
		}
		log.Error(err, "mrjar failed")
		os.Exit(1)
	}
}

// descriptorPath returns the descriptor to load, honoring -C.
func descriptorPath() string {
	if projectDir == "" || filepath.IsAbs(projectFile) {
		return projectFile
	}
	return filepath.Join(projectDir, projectFile)
}

// loadProject loads and plans the project and returns a builder running the
// discovered toolchains.
func loadProject(cmd *cobra.Command) (context.Context, *build.Project, *build.Builder, error) {
	ctx := logr.NewContext(cmd.Context(), log)

	cfg, err := config.Load(descriptorPath())
	if err != nil {
		return nil, nil, nil, err
	}
	snap, err := cfg.Snapshot()
	if err != nil {
		return nil, nil, nil, err
	}

	resolver, err := toolchain.Discover(toolchain.Options{
		Homes:      snap.Toolchains,
		Advertised: env.ToolchainHomes(),
		JavaHome:   env.JavaHome(),
		LookPath:   toolchain.DefaultLookPath,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to discover toolchains: %w", err)
	}
	versions := snap.Versions
	if current, ok := resolver.Current(); ok {
		versions.Running = current.Version
	}
	log.V(logger.DebugLevel).Info("toolchains discovered",
		"running", versions.Running, "actual", versions.Actual(), "strict", versions.Strict)

	p, err := build.Prepare(snap, versions)
	if err != nil {
		return nil, nil, nil, err
	}
	b := build.NewBuilder(javac.New(), resolver)
	b.Jobs = jobs
	return ctx, p, b, nil
}
