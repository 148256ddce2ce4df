// # cmd/uanodeset/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"uanodeset/internal/config"
	"uanodeset/internal/export"
	"uanodeset/internal/generator"
	"uanodeset/internal/graph"
	"uanodeset/internal/observability"
	"uanodeset/internal/parser"
	"uanodeset/internal/watcher"
)

type App struct {
	Config *config.Config
	Graph  *graph.UAGraph

	include []glob.Glob
	exclude []glob.Glob
	watcher *watcher.Watcher
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	for _, pattern := range cfg.Include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		a.include = append(a.include, g)
	}
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		a.exclude = append(a.exclude, g)
	}
	return a, nil
}

// InputFiles expands the configured inputs. Directories are walked and
// filtered through the include and exclude patterns; files listed
// directly are taken as is. Order follows the config; the merge order
// is decided later from the files' model requirements.
func (a *App) InputFiles() ([]string, error) {
	var files []string
	for _, input := range a.Config.Inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", input, err)
		}
		if !info.IsDir() {
			files = append(files, input)
			continue
		}
		var dirFiles []string
		err = filepath.Walk(input, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			if a.matches(filepath.Base(path)) {
				dirFiles = append(dirFiles, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", input, err)
		}
		sort.Strings(dirFiles)
		files = append(files, dirFiles...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	return files, nil
}

func (a *App) matches(base string) bool {
	included := len(a.include) == 0
	for _, g := range a.include {
		if g.Match(base) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, g := range a.exclude {
		if g.Match(base) {
			return false
		}
	}
	return true
}

// Rebuild parses every input and merges them into a fresh graph.
func (a *App) Rebuild() error {
	observability.RebuildsTotal.Inc()

	files, err := a.InputFiles()
	if err != nil {
		observability.RebuildErrorsTotal.Inc()
		return err
	}
	// Files requiring another input's model must merge after it.
	files, err = parser.SortByDependencies(files)
	if err != nil {
		observability.RebuildErrorsTotal.Inc()
		return err
	}

	sets := make([]*parser.NodeSet, 0, len(files))
	for _, f := range files {
		start := time.Now()
		set, err := parser.ParseFile(f)
		if err != nil {
			observability.RebuildErrorsTotal.Inc()
			return err
		}
		observability.ParsingDuration.WithLabelValues(filepath.Base(f)).Observe(time.Since(start).Seconds())
		slog.Debug("parsed nodeset", "file", f, "nodes", len(set.Nodes))
		sets = append(sets, set)
	}

	start := time.Now()
	g, err := graph.Build(sets, a.Config.GraphOptions())
	if err != nil {
		observability.RebuildErrorsTotal.Inc()
		return err
	}
	observability.MergeDuration.Observe(time.Since(start).Seconds())

	if a.Config.Merge.ResolveEnums {
		n := g.ResolveEnums()
		slog.Debug("resolved enum values", "count", n)
	}

	observability.GraphNodes.Set(float64(g.Len()))
	observability.GraphEdges.Set(float64(g.EdgeCount()))
	observability.GraphWarnings.Set(float64(len(g.Warnings())))

	for _, w := range g.Warnings() {
		slog.Warn(w)
	}

	a.Graph = g
	return nil
}

// outputNamespace picks the namespace to serialize: the configured one,
// or the last merged model.
func (a *App) outputNamespace() (string, error) {
	if a.Config.Output.XMLNamespace != "" {
		return a.Config.Output.XMLNamespace, nil
	}
	if len(a.Graph.Models) == 0 {
		return "", fmt.Errorf("no model header in inputs, set output.xml_namespace")
	}
	return a.Graph.Models[len(a.Graph.Models)-1].URI, nil
}

// GenerateOutputs writes every configured sink.
func (a *App) GenerateOutputs() error {
	if a.Config.Output.XML != "" {
		uri, err := a.outputNamespace()
		if err != nil {
			return err
		}
		start := time.Now()
		doc, err := generator.Bytes(a.Graph, uri)
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.XML, doc, 0644); err != nil {
			return fmt.Errorf("write %s: %w", a.Config.Output.XML, err)
		}
		observability.GenerateDuration.WithLabelValues(uri).Observe(time.Since(start).Seconds())
		slog.Info("wrote nodeset", "path", a.Config.Output.XML, "namespace", uri)
	}

	if a.Config.Output.TSV != "" {
		start := time.Now()
		if err := export.WriteTSVFiles(a.Config.Output.TSV, a.Graph); err != nil {
			return err
		}
		observability.ExportDuration.WithLabelValues("tsv").Observe(time.Since(start).Seconds())
		slog.Info("wrote tsv export", "base", a.Config.Output.TSV)
	}

	if a.Config.Output.SQLite != "" {
		start := time.Now()
		store, err := export.OpenStore(a.Config.Output.SQLite)
		if err != nil {
			return err
		}
		err = store.SaveGraph(context.Background(), a.Graph)
		if cerr := store.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		observability.ExportDuration.WithLabelValues("sqlite").Observe(time.Since(start).Seconds())
		slog.Info("wrote sqlite export", "path", a.Config.Output.SQLite)
	}

	return nil
}

// StartWatcher rebuilds and regenerates outputs whenever an input file
// changes.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Include,
		a.Config.Exclude,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	if err := w.Watch(a.Config.Inputs); err != nil {
		w.Close()
		return err
	}
	a.watcher = w
	return nil
}

func (a *App) HandleChanges(paths []string) {
	observability.WatcherEventsTotal.Inc()
	slog.Info("inputs changed, rebuilding", "files", len(paths))
	if err := a.Rebuild(); err != nil {
		slog.Error("rebuild failed", "error", err)
		return
	}
	if err := a.GenerateOutputs(); err != nil {
		slog.Error("output generation failed", "error", err)
	}
}

// HealthCheck reports the state of the last merge.
func (a *App) HealthCheck() observability.Health {
	if a.Graph == nil {
		return observability.Health{Status: "down"}
	}
	return observability.Health{
		Status:     "up",
		Nodes:      a.Graph.Len(),
		References: a.Graph.EdgeCount(),
		Warnings:   len(a.Graph.Warnings()),
	}
}

// Summary renders a one-screen report of the merged graph.
func (a *App) Summary() string {
	var b strings.Builder
	g := a.Graph

	b.WriteString("NodeSet Summary\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Namespaces: %d\n", g.Namespaces.Len())
	for i, uri := range g.Namespaces.URIs() {
		fmt.Fprintf(&b, "  %d: %s\n", i, uri)
	}
	fmt.Fprintf(&b, "Nodes: %d\n", g.Len())
	fmt.Fprintf(&b, "References: %d\n", g.EdgeCount())
	fmt.Fprintf(&b, "Warnings: %d\n", len(g.Warnings()))

	if errs := g.ValidateValues(); len(errs) > 0 {
		fmt.Fprintf(&b, "Value mismatches (%d)\n", len(errs))
		for _, err := range errs {
			fmt.Fprintf(&b, "- %v\n", err)
		}
	}

	return b.String()
}
