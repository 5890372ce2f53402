package cli

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	quiet    bool
)

// rootCmd starts the interactive chat session when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft - multi-thread LLM chat sessions",
	Long: `Weft is an interactive chat client for remote LLM providers.
Conversations run in named agents that can be forked, copied, switched
and deleted, each persisted independently on disk.`,
	Version: version,
	RunE:    runChat,
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.weft/weft.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "start in quiet mode (bare, automation-friendly output)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}
