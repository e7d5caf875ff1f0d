package utils

import "testing"

func TestChunk(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4, 5, 6, 7}, 5)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 5 || len(chunks[1]) != 2 {
		t.Fatalf("unexpected chunk sizes %d and %d", len(chunks[0]), len(chunks[1]))
	}
	if chunks[1][0] != 6 {
		t.Fatalf("expected second chunk to start at 6, got %d", chunks[1][0])
	}
}

func TestChunkEmpty(t *testing.T) {
	if chunks := Chunk([]string{}, 5); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}
