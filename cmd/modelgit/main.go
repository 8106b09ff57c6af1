package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "modelgit",
		Short: "Version control for architecture models",
		Long: `Collaborate on architecture models through git.

Commits carry a manifest of the model objects they touch, diffs compare
models object by object, and merges combine the changes of both sides at
the level of model objects instead of text lines.`,
		SilenceUsage: true,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP(controllers.RepositoryFlag, "C", ".",
		"Working folder of the repository")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if fc, ok := ctrl.(entities.FlagsController); ok {
			fc.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

// applyEarlyFlags handles the flags that must take effect before the
// container is built, since settings are loaded while resolving it.
func applyEarlyFlags(args []string) {
	//nolint:exhaustruct // throwaway command used to parse the global flags only
	early := &cobra.Command{}
	early.Flags().StringP("config", "c", "", "")
	early.Flags().BoolP("verbose", "v", false, "")
	early.Flags().ParseErrorsWhitelist.UnknownFlags = true
	_ = early.Flags().Parse(args)

	if path, _ := early.Flags().GetString("config"); path != "" {
		_ = os.Setenv(entities.ConfigEnvVar, path)
	}
	if verbose, _ := early.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}
	applyEarlyFlags(os.Args[1:])

	cobraRoot := buildRootCommand()

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'modelgit': %s", err)
	}
}
