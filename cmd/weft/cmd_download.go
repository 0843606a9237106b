package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/store"
)

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <url> <checksum>",
		Short: "Fetch a URL into the store, verifying its checksum",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			downloader := store.NewDownloader(store.WithAttempts(cfg.DownloadAttempts))
			blob, err := downloader.Download(cmd.Context(), s, args[0], args[1])
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
}
