package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
	"github.com/pastego/pastego/tests/testutil"
)

func TestSeededTranslateTemplate(t *testing.T) {
	s := testutil.NewTestStore(t)

	templates, err := s.GetTemplates(context.Background())
	if err != nil {
		t.Fatalf("listing templates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("fresh store has %d templates, want 1 seeded", len(templates))
	}
	if !strings.Contains(templates[0].Prompt, "{{materials}}") {
		t.Error("seeded template should contain the materials marker")
	}
}

func TestUpsertTemplateValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tpl  model.Template
	}{
		{"empty name", model.Template{Prompt: "do a thing: {{materials}}"}},
		{"empty prompt", model.Template{Name: "Summarize"}},
		{"whitespace prompt", model.Template{Name: "Summarize", Prompt: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.UpsertTemplate(ctx, tt.tpl); !errors.Is(err, store.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpsertAndDeleteTemplate(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	saved, err := s.UpsertTemplate(ctx, model.Template{
		Name:   "Summarize",
		Prompt: "Summarize the following:\n\n{{materials}}",
	})
	if err != nil {
		t.Fatalf("saving template: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved template should get an id")
	}
	if saved.Category != "general" {
		t.Errorf("default category = %q, want general", saved.Category)
	}

	saved.Name = "Summarize briefly"
	if _, err := s.UpsertTemplate(ctx, *saved); err != nil {
		t.Fatalf("updating template: %v", err)
	}

	got, err := s.GetTemplateByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("reading template: %v", err)
	}
	if got.Name != "Summarize briefly" {
		t.Errorf("name = %q after update", got.Name)
	}

	if err := s.DeleteTemplate(ctx, saved.ID); err != nil {
		t.Fatalf("deleting template: %v", err)
	}
	if _, err := s.GetTemplateByID(ctx, saved.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}
