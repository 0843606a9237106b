package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

func newCompressCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "compress <blob-id>",
		Short: "Compress a blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodec(cmd, args[0], store.CompressionFormat(format), store.Compress)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "zstd", "compression format (gz, zstd, lz4)")
	return cmd
}

func newDecompressCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decompress <blob-id>",
		Short: "Decompress a blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodec(cmd, args[0], store.CompressionFormat(format), store.Decompress)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "zstd", "compression format (bz2, gz, zstd, lz4)")
	return cmd
}

type codecFunc func(ctx context.Context, s object.Storage, b *object.Blob, format store.CompressionFormat) (*object.Blob, error)

func runCodec(cmd *cobra.Command, rawID string, format store.CompressionFormat, codec codecFunc) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	blob := object.NewBlobFromID(object.ID(rawID))
	out, err := codec(cmd.Context(), s, blob, format)
	if err != nil {
		return err
	}
	id, err := out.ID(cmd.Context(), s)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}
