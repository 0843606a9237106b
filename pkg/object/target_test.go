package object

import (
	"context"
	"errors"
	"testing"
)

func TestNewTargetFromString(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("/bin/cc"))
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustSingleString(t, p.Executable); got != "/bin/cc" {
		t.Errorf("got executable %q", got)
	}
	if p.Host != DefaultHost() {
		t.Errorf("got host %q, want %q", p.Host, DefaultHost())
	}
	if p.Unsafe || p.Network {
		t.Error("unsafe and network should default to false")
	}
}

func TestNewTargetRequiresExecutable(t *testing.T) {
	ctx := context.Background()
	c := NewClient(newFakeStorage())

	_, err := c.NewTarget(ctx, Map{"name": String("build")})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("got %v, want ErrInvalidValue", err)
	}
}

func TestNewTargetFieldPatches(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("make"), Map{
		"host":     String("amd64-linux"),
		"module":   String("std/toolchains"),
		"name":     String("release"),
		"checksum": String("sha256:abc"),
		"unsafe":   Bool(true),
		"network":  Bool(true),
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if p.Host != "amd64-linux" || p.Module != "std/toolchains" || p.Name != "release" {
		t.Errorf("got %+v", p)
	}
	if p.Checksum != "sha256:abc" || !p.Unsafe || !p.Network {
		t.Errorf("got %+v", p)
	}
}

func TestNewTargetArgsAccumulate(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("cc"),
		Map{"args": List{String("-O2")}},
		Map{"args": String("-o")},
		Map{"args": String("out")},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	want := []String{"-O2", "-o", "out"}
	if len(p.Args) != len(want) {
		t.Fatalf("got %d args, want %d: %v", len(p.Args), len(want), p.Args)
	}
	for i, arg := range want {
		if p.Args[i] != arg {
			t.Errorf("arg %d: got %v, want %v", i, p.Args[i], arg)
		}
	}
}

func TestNewTargetEnvSetAndOverride(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("sh"),
		Map{"env": Map{"LANG": String("C"), "TERM": String("dumb")}},
		Map{"env": Map{"LANG": String("en_US.UTF-8")}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if p.Env["LANG"] != String("en_US.UTF-8") {
		t.Errorf("got LANG %v, want later value", p.Env["LANG"])
	}
	if p.Env["TERM"] != String("dumb") {
		t.Errorf("got TERM %v", p.Env["TERM"])
	}
}

func TestNewTargetEnvTemplateAppend(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("sh"),
		Map{"env": Map{"PATH": String("/usr/bin")}},
		Map{"env": Map{"PATH": TemplateAppend(String("/opt/bin"), String(":"))}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	tmpl, ok := p.Env["PATH"].(*Template)
	if !ok {
		t.Fatalf("PATH is %T, want *Template", p.Env["PATH"])
	}
	if got := mustSingleString(t, tmpl); got != "/usr/bin:/opt/bin" {
		t.Errorf("got %q, want /usr/bin:/opt/bin", got)
	}
}

func TestNewTargetEnvUnset(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tgt, err := c.NewTarget(ctx, String("sh"),
		Map{"env": Map{"HOME": String("/root")}},
		Map{"env": Map{"HOME": Unset()}},
	)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Env["HOME"]; ok {
		t.Error("unset env entry survived")
	}
}

func TestNewTargetFromTargetCopiesFields(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	base, err := c.NewTarget(ctx, String("cc"),
		Map{"name": String("base"), "env": Map{"CC": String("gcc")}, "args": String("-O2")},
	)
	if err != nil {
		t.Fatal(err)
	}
	derived, err := c.NewTarget(ctx, base, Map{"name": String("derived"), "args": String("-g")})
	if err != nil {
		t.Fatal(err)
	}
	p, err := derived.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "derived" {
		t.Errorf("got name %q", p.Name)
	}
	if p.Env["CC"] != String("gcc") {
		t.Errorf("env lost: %v", p.Env)
	}
	if len(p.Args) != 2 || p.Args[0] != String("-O2") || p.Args[1] != String("-g") {
		t.Errorf("args should extend the base: %v", p.Args)
	}
}

func TestNewTargetExecutableFromArtifact(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	tool, err := c.NewFile(ctx, String("#!/bin/sh\n"), Map{"executable": Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	tgt, err := c.NewTarget(ctx, tool)
	if err != nil {
		t.Fatal(err)
	}
	p, err := tgt.Payload(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	components := p.Executable.Components()
	if len(components) != 1 || components[0] != Component(tool) {
		t.Errorf("got executable %v, want the file artifact", components)
	}
}

func TestNewTargetRejectsUnknownKey(t *testing.T) {
	ctx := context.Background()
	c := NewClient(newFakeStorage())

	_, err := c.NewTarget(ctx, String("cc"), Map{"timeout": Number(30)})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("got %v, want ErrInvalidValue", err)
	}
}
