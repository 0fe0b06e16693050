// Package editor holds the scene list edit model: immutable snapshots and
// the reducer that produces the next one from an action.
package editor

import (
	"github.com/Corphon/SceneVideoMaker/internal/models"
)

// Status is the generation state of a session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// State is one snapshot of the form. Values are never mutated after they are
// returned from Reduce; every transition copies the scene slice it changes.
type State struct {
	Project  models.Project `json:"project"`
	Status   Status         `json:"status"`
	VideoURL string         `json:"video_url,omitempty"`
	Error    string         `json:"error,omitempty"`
	Version  uint64         `json:"version"`
}

// NewState wraps a project in an idle snapshot.
func NewState(project models.Project) State {
	return State{
		Project: project.Clone(),
		Status:  StatusIdle,
	}
}

// Generating reports whether a generation request is outstanding.
func (s State) Generating() bool {
	return s.Status == StatusGenerating
}
