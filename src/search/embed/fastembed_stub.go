//go:build !fastembed

package embed

import (
	"context"
	"fmt"
)

type FastEmbedder struct{}

func NewFastEmbedder(_ context.Context) (*FastEmbedder, error) {
	return nil, fmt.Errorf("fastembed support not included; rebuild with -tags fastembed")
}

func (*FastEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}

func (*FastEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("fastembed support not included")
}

func (*FastEmbedder) Close() error { return nil }
