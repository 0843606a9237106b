package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "weft",
		Short: "Content-addressed artifact store",
	}

	root.PersistentFlags().String("store", "", "store root directory (overrides config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCheckinCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newCatCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newChecksumCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newArchiveCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newCompressCmd())
	root.AddCommand(newDecompressCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newPullCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("weft 0.1.0-dev")
		},
	}
}
