package main

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// surface is a downsampled result of the raw cloud.
type surface struct {
	step mat.Vec3
	pp   *pc.PointCloud
}

type history interface {
	MaxHistory() int
	SetMaxHistory(m int)
	push(s *surface) *surface
	undo() (*surface, bool)
	clear()
}

// historySlice keeps up to maxHistory previous surfaces
// in addition to the latest one.
type historySlice struct {
	history    []*surface
	maxHistory int
}

func newHistory(n int) history {
	return &historySlice{maxHistory: n}
}

func (h *historySlice) MaxHistory() int {
	return h.maxHistory
}

func (h *historySlice) SetMaxHistory(m int) {
	if m < 0 {
		m = 0
	}
	h.maxHistory = m
	if len(h.history) > m+1 {
		h.history = h.history[len(h.history)-m-1:]
	}
}

func (h *historySlice) push(s *surface) *surface {
	h.history = append(h.history, s)
	if len(h.history) > h.maxHistory+1 {
		h.history[0] = nil
		h.history = h.history[1:]
	}
	return s
}

func (h *historySlice) undo() (*surface, bool) {
	if n := len(h.history); n > 1 {
		h.history = h.history[:n-1]
		return h.history[n-2], true
	}
	return nil, false
}

func (h *historySlice) clear() {
	h.history = nil
}
