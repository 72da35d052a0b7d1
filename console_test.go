package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole(t *testing.T) {
	c := &console{cmd: newTestCommandContext(t, methodCells)}

	testCases := []struct {
		line     string
		expected string
		err      bool
	}{
		{line: "", expected: ""},
		{line: "voxel_size", expected: "1.000"},
		{line: "voxel_preset", expected: "0.000 0.125\n1.000 0.250\n2.000 0.500\n3.000 1.000"},
		{line: "voxel_preset 2", expected: "2.000 0.500"},
		{line: "voxel_size", expected: "0.500"},
		{line: "voxel_size 10", expected: "10.000"},
		{line: "points", expected: "1.900 1.300 0.600"},
		{line: "nearest 0 0 0", expected: "1.900 1.300 0.600"},
		{line: "undo", expected: "0.500"},
		{line: "voxel_size 1", expected: "1.000"},
		{line: "stats", expected: "5.000 3.000 4.000\n4.000 4.000 3.000\n1.250 0.500 2.000"},
		{line: "max_history", expected: "4.000"},
		{line: "max_history 2", expected: "2.000"},
		{line: "origin", expected: "0.000 0.000 0.000"},
		{line: "voxel_preset 9", err: true},
		{line: "max_history -1", err: true},
		{line: "voxel_size 0", err: true},
		{line: "voxel_size 1 2", err: true},
		{line: "nearest 0 0", err: true},
		{line: "voxel_size a", err: true},
		{line: "unknown", err: true},
	}
	for _, tt := range testCases {
		res, err := c.Run(tt.line)
		if tt.err {
			if err == nil {
				t.Errorf("%q: Expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: Unexpected error: %v", tt.line, err)
		}
		if res != tt.expected {
			t.Errorf("%q: Expected:\n%s\nGot:\n%s", tt.line, tt.expected, res)
		}
	}
}

func TestConsole_Serve(t *testing.T) {
	c := &console{cmd: newTestCommandContext(t, methodCells)}

	var out bytes.Buffer
	in := strings.NewReader("voxel_size\n\nunknown\nvoxel_size 10\n")
	if err := c.Serve(in, &out); err != nil {
		t.Fatal(err)
	}
	expected := "1.000\nerror: invalid command\n10.000\n"
	if out.String() != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, out.String())
	}
}
