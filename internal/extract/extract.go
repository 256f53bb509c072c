// Package extract turns a founder's free-text weekly update into structured
// needs and learnings. The LLM-backed extractor is preferred when configured;
// the keyword heuristic is both the fallback and the offline default.
package extract

import (
	"context"

	"matchfoundry/pkg/types"
)

// maxItems caps each extracted list.
const maxItems = 3

type Result struct {
	Needs     []types.CheckinItem `json:"needs"`
	Learnings []types.CheckinItem `json:"learnings"`
}

type Extractor interface {
	Extract(ctx context.Context, text string) (*Result, error)
}

func capItems(items []types.CheckinItem) []types.CheckinItem {
	if len(items) > maxItems {
		return items[:maxItems]
	}
	return items
}
