package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvp-joe/project-atlas/internal/assembler"
)

var ErrNoInventory = errors.New("inventory is required")

// Summarizer writes the prose fields of the final document from an inventory.
// Implementations live outside this module.
type Summarizer interface {
	Summarize(ctx context.Context, inv *Inventory) (assembler.Prose, error)
}

// StaticSummarizer returns fixed prose, for prose written ahead of time.
type StaticSummarizer struct {
	Prose assembler.Prose
}

func (s StaticSummarizer) Summarize(ctx context.Context, inv *Inventory) (assembler.Prose, error) {
	return s.Prose, nil
}

// Document summarizes inv and renders the final markdown. When the summarizer
// leaves the purpose empty, the inventory overview or the repository
// description fills it.
func Document(ctx context.Context, inv *Inventory, s Summarizer, maxAPIs int) (string, error) {
	if inv == nil {
		return "", ErrNoInventory
	}
	prose, err := s.Summarize(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", inv.Repo, err)
	}
	if prose.Purpose == "" {
		prose.Purpose = inv.Overview
	}
	if prose.Purpose == "" && inv.Resolution != nil {
		prose.Purpose = inv.Resolution.Description
	}
	return assembler.Render(assembler.Build(inv.Repo, inv.RepoURL, prose, inv.Signatures, maxAPIs)), nil
}
