package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// TargetExt is the extension of every produced thumbnail.
	TargetExt = ".bmp"
	// CoverPrefix is the file name prefix that marks cover art.
	CoverPrefix = "cover"

	DefaultTargetSize    = 500
	DefaultSkipThreshold = 600
)

// Candidate is a file discovered as needing conversion.
type Candidate struct {
	Path   string `json:"path"`   // source image
	Output string `json:"output"` // thumbnail written on success
}

// NewCandidate builds a Candidate for path with its derived output path.
func NewCandidate(path string) Candidate {
	return Candidate{Path: path, Output: OutputPath(path)}
}

// OutputPath replaces the extension of path with TargetExt.
// A path without an extension gets TargetExt appended.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + TargetExt
}

// Outcome is the terminal result of converting one Candidate.
type Outcome struct {
	Candidate Candidate `json:"candidate"`
	Err       error     `json:"-"`
}

// Succeeded reports whether the conversion produced its output.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// String renders the status line printed for the outcome.
func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("Error while converting %s\n\t%v", o.Candidate.Path, o.Err)
	}

	return fmt.Sprintf("Converted %s", o.Candidate.Path)
}

// Report aggregates the counters of a single run.
type Report struct {
	RunID      uuid.UUID `json:"run_id"`
	Discovered int       `json:"discovered"`
	Converted  int       `json:"converted"`
	Failed     int       `json:"failed"`
}
