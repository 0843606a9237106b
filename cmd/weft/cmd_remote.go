package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/remote"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over the object exchange protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			log := slog.Default()
			log.Info("serving store", "root", s.Root(), "addr", addr)
			return http.ListenAndServe(addr, remote.NewServer(s, log))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8337", "listen address")
	return cmd
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <id> <url>",
		Short: "Upload an object graph to a remote store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			c, err := remote.NewClient(args[1])
			if err != nil {
				return err
			}
			pushed, err := remote.Push(cmd.Context(), c, s, object.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("pushed %d objects\n", pushed)
			return nil
		},
	}
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <id> <url>",
		Short: "Download an object graph from a remote store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			c, err := remote.NewClient(args[1])
			if err != nil {
				return err
			}
			pulled, err := remote.Pull(cmd.Context(), c, s, object.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("pulled %d objects\n", pulled)
			return nil
		},
	}
}
