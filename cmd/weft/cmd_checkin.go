package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

func newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <path>",
		Short: "Import a filesystem path as an artifact and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			artifact, err := store.Checkin(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			id, err := object.ArtifactID(cmd.Context(), s, artifact)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}
