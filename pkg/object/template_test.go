package object

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestNewTemplateMergesStringRuns(t *testing.T) {
	ctx := context.Background()
	tmpl, err := NewTemplate(ctx, String("a"), String("b"), String("c"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("abc")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateDropsEmptyStrings(t *testing.T) {
	ctx := context.Background()
	tmpl, err := NewTemplate(ctx, String(""), String("a"), String(""), Placeholder{Name: "x"}, String(""))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("a"), Placeholder{Name: "x"}}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateEmptyStringBetweenRuns(t *testing.T) {
	// An empty string must not break a run: the strings around it still
	// merge into one component.
	ctx := context.Background()
	tmpl, err := NewTemplate(ctx, String("a"), String(""), String("b"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("ab")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateArtifactComponents(t *testing.T) {
	ctx := context.Background()
	s := newFakeStorage()
	c := NewClient(s)

	dir, err := c.NewDirectory(ctx, Map{"bin/tool": String("t")})
	if err != nil {
		t.Fatal(err)
	}
	file, err := c.NewFile(ctx, String("f"))
	if err != nil {
		t.Fatal(err)
	}
	link, err := c.NewSymlink(ctx, String("bin/tool"))
	if err != nil {
		t.Fatal(err)
	}

	tmpl, err := NewTemplate(ctx, String("a"), dir, String("b"), file, link, String("c"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("a"), dir, String("b"), file, link, String("c")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateIdempotent(t *testing.T) {
	ctx := context.Background()
	first, err := NewTemplate(ctx, String("bin/"), Placeholder{Name: "name"}, String(""), String(".exe"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewTemplate(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Components(), second.Components()) {
		t.Errorf("re-templating changed components: %v vs %v", first.Components(), second.Components())
	}
}

func TestNewTemplateSplicesNested(t *testing.T) {
	ctx := context.Background()
	inner, err := NewTemplate(ctx, String("x"))
	if err != nil {
		t.Fatal(err)
	}
	tmpl, err := NewTemplate(ctx, String("pre-"), inner, List{String("-"), String("post")})
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("pre-x-post")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateResolvesThunks(t *testing.T) {
	ctx := context.Background()
	tmpl, err := NewTemplate(ctx, Thunk(func(ctx context.Context) (Value, error) {
		return String("lazy"), nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("lazy")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestNewTemplateRejectsNonComponent(t *testing.T) {
	ctx := context.Background()
	_, err := NewTemplate(ctx, Number(1))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("got %v, want ErrInvalidValue", err)
	}
}

func TestTemplateJoinFiltersEmpty(t *testing.T) {
	ctx := context.Background()
	tmpl, err := TemplateJoin(ctx, String(":"), String("a"), String(""), String("b"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("a:b")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}

func TestTemplateJoinAllEmpty(t *testing.T) {
	ctx := context.Background()
	tmpl, err := TemplateJoin(ctx, String(":"), String(""), String(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(tmpl.Components()) != 0 {
		t.Errorf("got %v, want empty template", tmpl.Components())
	}
}

func TestTemplateJoinNilSeparator(t *testing.T) {
	ctx := context.Background()
	tmpl, err := TemplateJoin(ctx, nil, String("a"), String("b"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Component{String("ab")}
	if !reflect.DeepEqual(tmpl.Components(), want) {
		t.Errorf("got %v, want %v", tmpl.Components(), want)
	}
}
