package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailfred-go/mailfred/transports/imap"
)

var clearFolderCmd = &cobra.Command{
	Use:   "clear-folder <name>",
	Short: "Delete every message in the given IMAP folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.InConfig("imap") {
			return fmt.Errorf("config.yaml is missing its \"imap:\" section")
		}

		return imapTransport().ClearFolder(context.Background(), args[0])
	},
}
