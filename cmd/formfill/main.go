// Command formfill fills a form schema interactively in the terminal and
// prints the resulting submission. Schemas load from a local directory;
// autofill state optionally persists to a JSON file between runs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/goliatone/go-formfill/internal/config"
	"github.com/goliatone/go-formfill/internal/store"
	"github.com/goliatone/go-formfill/pkg/autofill"
	"github.com/goliatone/go-formfill/pkg/engine"
	"github.com/goliatone/go-formfill/pkg/render/template/pongo"
	"github.com/goliatone/go-formfill/pkg/renderers/tui"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/testsupport"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("formfill: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("formfill: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	forms, err := schema.LoadFS(os.DirFS(cfg.SchemaDir))
	if err != nil {
		return err
	}
	if cfg.List {
		return listForms(forms)
	}

	var autofillStore autofill.Store
	if cfg.StateFile != "" {
		autofillStore = store.New(cfg.StateFile)
	}

	eng := engine.New(
		engine.WithProvider(&testsupport.StaticProvider{Forms: forms}),
		engine.WithAutofillStore(autofillStore),
		engine.WithSink(&printSink{out: os.Stdout}),
		engine.WithTemplateRenderer(pongo.New()),
	)

	coordinator, doc, err := eng.Open(ctx, cfg.Form, cfg.Actor)
	if err != nil {
		return err
	}
	if doc.Name != "" {
		fmt.Fprintf(os.Stdout, "Document: %s\n", doc.Name)
	}

	mode := workflow.ModeManual
	if cfg.Mode == config.ModeEsign {
		mode = workflow.ModeEsign
	}

	filler := tui.New(tui.WithMode(mode))
	result, err := filler.Run(ctx, coordinator, eng.RenderableBlocks(coordinator))
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("submission rejected: %s", result.Message)
	}
	return nil
}

func listForms(forms map[string]schema.FormSchema) error {
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "%s (version %s)\n", name, forms[name].Version)
	}
	return nil
}

// printSink writes submissions to the terminal instead of a backend, which is
// all the offline CLI needs.
type printSink struct {
	out *os.File
}

func (s *printSink) FilloutForm(_ context.Context, sub workflow.Submission) (workflow.Result, error) {
	return s.print("fillout", sub)
}

func (s *printSink) InitiateForm(_ context.Context, sub workflow.Submission) (workflow.Result, error) {
	return s.print("esign-initiation", sub)
}

func (s *printSink) print(kind string, sub workflow.Submission) (workflow.Result, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"kind":       kind,
		"request_id": sub.RequestID,
		"form":       sub.FormName,
		"version":    sub.Version,
		"values":     sub.Values,
	}, "", "  ")
	if err != nil {
		return workflow.Result{}, err
	}
	fmt.Fprintln(s.out, string(payload))
	return workflow.Result{Success: true}, nil
}
