package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <artifact-id> <path>",
		Short: "Materialize an artifact at a filesystem path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			artifact, err := object.ArtifactFromID(object.ID(args[0]))
			if err != nil {
				return err
			}
			if err := store.Checkout(cmd.Context(), s, artifact, args[1]); err != nil {
				return err
			}
			fmt.Println(args[1])
			return nil
		},
	}
}
