// Package generate holds the selection and rendering engine: given an
// analyzed project and a config, it decides which files enter the context
// document, how each is represented, and assembles the final markdown.
package generate

import (
	"context"

	"github.com/kurtatter/cmforai/internal/gitlog"
	"github.com/kurtatter/cmforai/internal/logger"
	"github.com/kurtatter/cmforai/internal/project"
)

var log = logger.ForComponent("generator")

// Generator wires the selector, renderer and assembler for one config.
type Generator struct {
	cfg       Config
	selector  *Selector
	renderer  *Renderer
	assembler *Assembler
}

func New(cfg Config) *Generator {
	return &Generator{
		cfg:       cfg,
		selector:  NewSelector(NewEstimator(), SelectorOptions{}, nil),
		renderer:  NewRenderer(),
		assembler: NewAssembler(),
	}
}

// NewWithParts is the injection point for tests and the serve mode.
func NewWithParts(cfg Config, selector *Selector, renderer *Renderer) *Generator {
	if selector == nil {
		selector = NewSelector(NewEstimator(), SelectorOptions{}, nil)
	}
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Generator{
		cfg:       cfg,
		selector:  selector,
		renderer:  renderer,
		assembler: NewAssembler(),
	}
}

// Generate produces the full markdown document for an analyzed project.
// File reads may fail individually; those sections carry placeholders.
func (g *Generator) Generate(ctx context.Context, info *project.Info) (string, Result) {
	result := g.selector.Select(info.Files, g.cfg)
	log.Info("files selected",
		"candidates", len(info.Files),
		"selected", len(result.Selections),
		"estimated_tokens", result.TotalTokens,
	)

	rendered := make([]RenderedFile, 0, len(result.Selections))
	for _, sel := range result.Selections {
		rendered = append(rendered, RenderedFile{
			Selection: sel,
			Body:      g.renderer.Render(sel.Record, sel.Compressed, g.cfg),
		})
	}

	history := gitlog.Recent(ctx, info.Root, g.cfg.GitLogCount)

	return g.assembler.Assemble(info, g.cfg, rendered, history), result
}
