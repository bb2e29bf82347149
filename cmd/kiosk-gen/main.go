// Command kiosk-gen writes synthetic kiosk transaction data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kiosk-gen",
		Short: "Generate sample water-kiosk transaction files",
		Long: `kiosk-gen writes kiosk_<id>/transactions_<id>_<MMDDYY>.csv trees with
realistic users, clients, volumes and a configurable share of malformed rows,
ready to be served by kiosk-analytics.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	root.AddCommand(newGenerateCmd())
	return root
}
