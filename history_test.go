package main

import (
	"testing"

	"github.com/seqsense/pcgol/mat"
)

func TestHistory(t *testing.T) {
	surfaces := make([]*surface, 4)
	for i := range surfaces {
		s := float32(i + 1)
		surfaces[i] = &surface{step: mat.Vec3{s, s, s}}
	}

	h := newHistory(2)
	for _, s := range surfaces {
		h.push(s)
	}

	for _, expected := range []*surface{surfaces[2], surfaces[1]} {
		s, ok := h.undo()
		if !ok {
			t.Fatal("Undo must succeed")
		}
		if s != expected {
			t.Errorf("Expected step %v, got %v", expected.step, s.step)
		}
	}
	if _, ok := h.undo(); ok {
		t.Error("History older than max history must be dropped")
	}
}

func TestHistory_SetMaxHistory(t *testing.T) {
	h := newHistory(4)
	for i := 0; i < 5; i++ {
		h.push(&surface{})
	}
	h.SetMaxHistory(1)
	if _, ok := h.undo(); !ok {
		t.Error("Undo must succeed")
	}
	if _, ok := h.undo(); ok {
		t.Error("Undo must fail after shrinking history")
	}

	h.SetMaxHistory(-1)
	if m := h.MaxHistory(); m != 0 {
		t.Errorf("Expected max history 0, got %d", m)
	}
	h.push(&surface{})
	h.push(&surface{})
	h.clear()
	if _, ok := h.undo(); ok {
		t.Error("Undo must fail after clear")
	}
}
