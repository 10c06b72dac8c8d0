package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailfred-go/mailfred/logger"
)

var rootCmd = &cobra.Command{
	Use:   "mailfred",
	Short: "Run handlers against a mailbox as if it were an RPC queue",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Setup(viper.GetBool("verbose"))
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clearFolderCmd)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Missing config.yaml is not fatal here: `version` and `--help` should
	// still work without one. serveCmd/clearFolderCmd check for the
	// sections they need themselves.
	_ = viper.ReadInConfig()
}

func Execute() error {
	return rootCmd.Execute()
}
