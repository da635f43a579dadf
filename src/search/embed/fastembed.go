//go:build fastembed

package embed

import (
	"context"

	fastembed "github.com/anush008/fastembed-go"
)

// FastEmbedder runs a local ONNX embedding model. It needs the onnxruntime
// shared library at runtime, so it is gated behind the fastembed build tag.
type FastEmbedder struct {
	model *fastembed.FlagEmbedding
}

func NewFastEmbedder(_ context.Context) (*FastEmbedder, error) {
	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:     fastembed.BGESmallEN,
		MaxLength: 512,
	})
	if err != nil {
		return nil, err
	}
	return &FastEmbedder{model: model}, nil
}

func (e *FastEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.model.QueryEmbed(text)
}

func (e *FastEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return e.model.Embed(texts, 32)
}

func (e *FastEmbedder) Close() error {
	e.model.Destroy()
	return nil
}
