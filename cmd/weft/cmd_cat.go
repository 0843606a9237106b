package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
)

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <id>",
		Short: "Write a blob's or file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			v, err := object.FromID(object.ID(args[0]))
			if err != nil {
				return err
			}
			var blob *object.Blob
			switch v := v.(type) {
			case *object.Blob:
				blob = v
			case *object.File:
				blob, err = v.Contents(cmd.Context(), s)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("cat %s: not a blob or file", args[0])
			}
			data, err := blob.Bytes(cmd.Context(), s)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}
