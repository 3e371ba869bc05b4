package cmd

import (
	"github.com/spf13/cobra"

	"gitlab.com/testpaper/papergen/internal/config"
)

var rootCmd = &cobra.Command{
	Use:     "papergen",
	Short:   "Test paper generator subject store",
	Long:    `The papergen Command Line Interface (CLI) serves and manages the subject store`,
	Version: Version,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: false,
		HiddenDefaultCmd:  true,
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	// CheckErr prints formatted error message, if there is any, and exits
	cobra.CheckErr(rootCmd.Execute())
}
