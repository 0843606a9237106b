package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

func newArchiveCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "archive <artifact-id>",
		Short: "Pack an artifact into a container blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			artifact, err := object.ArtifactFromID(object.ID(args[0]))
			if err != nil {
				return err
			}
			blob, err := store.Archive(cmd.Context(), s, artifact, store.ArchiveFormat(format))
			if err != nil {
				return err
			}
			id, err := blob.ID(cmd.Context(), s)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "tar", "container format (tar, zip)")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract <blob-id>",
		Short: "Unpack a container blob into an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			blob := object.NewBlobFromID(object.ID(args[0]))
			artifact, err := store.Extract(cmd.Context(), s, blob, store.ArchiveFormat(format))
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
	cmd.Flags().StringVarP(&format, "format", "f", "tar", "container format (tar, zip)")
	return cmd
}
