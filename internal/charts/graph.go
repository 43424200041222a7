// Package charts renders the synergy graph to an interactive HTML file.
package charts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"cardseer/internal/graph"
)

// GraphConfig holds configuration for the force-directed graph chart.
type GraphConfig struct {
	Title       string  // Chart title
	Subtitle    string  // Chart subtitle
	Width       string  // Chart width (e.g., "1200px")
	Height      string  // Chart height (e.g., "800px")
	Theme       string  // Chart theme
	Repulsion   float32 // Force layout node repulsion
	OnlyVisible bool    // Drop links with Visible=false from the rendering
}

// DefaultGraphConfig returns default graph chart configuration.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		Title:       "Card Synergy Graph",
		Subtitle:    "",
		Width:       "1200px",
		Height:      "800px",
		Theme:       "dark",
		Repulsion:   800,
		OnlyVisible: false,
	}
}

// RenderGraph creates an interactive force-directed graph HTML file.
func RenderGraph(g *graph.Graph, config GraphConfig, outputPath string) error {
	chart := charts.NewGraph()

	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
	)

	nodes := make([]opts.GraphNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			Value:      float32(n.Value),
			SymbolSize: n.Size,
			ItemStyle:  &opts.ItemStyle{Color: n.Color},
		})
	}

	links := make([]opts.GraphLink, 0, len(g.Links))
	for _, l := range g.Links {
		if config.OnlyVisible && !l.Visible {
			continue
		}
		links = append(links, opts.GraphLink{
			Source: l.Source,
			Target: l.Target,
			Value:  float32(l.Points),
		})
	}

	chart.AddSeries("synergy", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Force: &opts.GraphForce{
				Repulsion: config.Repulsion,
			},
			Roam:               opts.Bool(true),
			FocusNodeAdjacency: opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "right",
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Opacity:   opts.Float(0.3),
			Curveness: 0.1,
		}),
	)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
