package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/config"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/server"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var (
	logfile    string
	verbosity  int
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "cloudify-ls",
	Short:         "Language server for Cloudify blueprints",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the language server protocol on stdin/stdout (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cloudify-ls version %s\n", Version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logfile, "logfile", "", "write logs to this file instead of stderr")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&configPath, "config", "", "YAML configuration file")

	rootCmd.AddCommand(serveCmd, versionCmd, contextCmd, tokensCmd)
}

// configureLogging sets up commonlog, which glsp logs through as well.
// Logs go to stderr unless a file is given since stdout carries the
// protocol.
func configureLogging() {
	var path *string
	if logfile != "" {
		path = &logfile
	}
	commonlog.Configure(verbosity, path)
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadFile(configPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runtime.GOMAXPROCS(4)
	commonlog.GetLogger("cloudify-ls").Infof("starting cloudify-ls %s", Version)

	s := server.NewServer(server.Options{Version: Version, Config: cfg})
	return s.RunStdio()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
