package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configDir string
var verbose bool

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "/etc/hausmeister.d", "set directory to where your .hcl-configs are located")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:     "hausmeister",
	Short:   "Hausmeister - personal services backend",
	Long:    "Hausmeister bundles a health aggregator, a CSV ledger, markdown notes, a contact mailer and git-based backups into one small server",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Warn("Running 'hausmeister' without any arguments - defaulting to 'serve'. This behaviour may change in future releases!")
		serve.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
