package embed

import (
	"context"
	"reflect"
	"testing"
)

func TestHashingEmbeddingDeterministic(t *testing.T) {
	a := HashingEmbedding("Communication for Kindergarten focused on turn-taking")
	b := HashingEmbedding("Communication for Kindergarten focused on turn-taking")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same text must embed to the same vector")
	}
	if len(a) != hashingDim {
		t.Fatalf("want %d dimensions, got %d", hashingDim, len(a))
	}
}

func TestHashingEmbeddingDistinguishesText(t *testing.T) {
	a := HashingEmbedding("turn-taking")
	b := HashingEmbedding("counting")
	if reflect.DeepEqual(a, b) {
		t.Fatal("different texts should embed differently")
	}
}

func TestHashingEmbedderInterface(t *testing.T) {
	var e Embedder = HashingEmbedder{}
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != hashingDim {
		t.Fatalf("want %d dimensions, got %d", hashingDim, len(vec))
	}
}

func TestNewFallsBackToHashing(t *testing.T) {
	for _, provider := range []string{"", "hashing", "bogus"} {
		if _, ok := New(provider, "", "").(HashingEmbedder); !ok {
			t.Fatalf("provider %q should select the hashing embedder", provider)
		}
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	// Without an API key the openai provider cannot be built, so selection
	// falls back to hashing rather than returning a client that will fail
	// every call.
	if _, ok := New("openai", "", "").(HashingEmbedder); !ok {
		t.Fatal("openai without a key should fall back to hashing")
	}
}
