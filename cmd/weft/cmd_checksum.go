package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/store"
)

func newChecksumCmd() *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "checksum <file>",
		Short: "Print the checksum of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum, err := store.Checksum(store.ChecksumAlgorithm(algorithm), data)
			if err != nil {
				return err
			}
			fmt.Println(sum)
			return nil
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "blake3", "digest algorithm (blake3, sha256, sha512)")
	return cmd
}
