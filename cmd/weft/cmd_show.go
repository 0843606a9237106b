package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a summary of a stored object",
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
			return show(cmd.Context(), s, v)
		},
	}
}

func show(ctx context.Context, s *store.Store, v object.Value) error {
	switch v := v.(type) {
	case *object.Blob:
		size, err := v.Size(ctx, s)
		if err != nil {
			return err
		}
		p, err := v.Payload(ctx, s)
		if err != nil {
			return err
		}
		if p.IsBranch() {
			fmt.Printf("blob branch, %d bytes, %d children\n", size, len(p.Children))
			for _, child := range p.Children {
				id, err := child.Blob.ID(ctx, s)
				if err != nil {
					return err
				}
				fmt.Printf("  %s %d\n", id, child.Size)
			}
		} else {
			fmt.Printf("blob leaf, %d bytes\n", size)
		}
	case *object.Directory:
		entries, err := v.Entries(ctx, s)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("directory, %d entries\n", len(entries))
		for _, name := range names {
			id, err := object.ArtifactID(ctx, s, entries[name])
			if err != nil {
				return err
			}
			fmt.Printf("  %s %s\n", id, name)
		}
	case *object.File:
		p, err := v.Payload(ctx, s)
		if err != nil {
			return err
		}
		contentsID, err := p.Contents.ID(ctx, s)
		if err != nil {
			return err
		}
		fmt.Printf("file, contents %s, executable %t, %d references\n", contentsID, p.Executable, len(p.References))
	case *object.Symlink:
		target, err := v.Target(ctx, s)
		if err != nil {
			return err
		}
		fmt.Printf("symlink, %s\n", renderTemplate(ctx, s, target))
	case *object.Target:
		p, err := v.Payload(ctx, s)
		if err != nil {
			return err
		}
		fmt.Printf("target %q, host %s, module %q, %d env, %d args\n", p.Name, p.Host, p.Module, len(p.Env), len(p.Args))
		fmt.Printf("  executable %s\n", renderTemplate(ctx, s, p.Executable))
	default:
		return fmt.Errorf("show: unknown object %T", v)
	}
	return nil
}

// renderTemplate prints a template with artifact components shown as ids
// and placeholders in braces.
func renderTemplate(ctx context.Context, s *store.Store, t *object.Template) string {
	out := ""
	for _, c := range t.Components() {
		switch c := c.(type) {
		case object.String:
			out += string(c)
		case object.Placeholder:
			out += "{" + c.Name + "}"
		case object.Artifact:
			id, err := object.ArtifactID(ctx, s, c)
			if err != nil {
				out += "<error>"
				continue
			}
			out += string(id)
		}
	}
	return out
}
