package model

type TaskState string

const (
	TaskStatePending    TaskState = "pending"
	TaskStateInProgress TaskState = "in_progress"
	TaskStateSucceeded  TaskState = "succeeded"
	TaskStateFailed     TaskState = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s TaskState) Terminal() bool {
	return s == TaskStateSucceeded || s == TaskStateFailed
}

type EnhancedPhoto struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// StagingTask is one per-photo enhancement request. Index is the photo's
// position in the submitted snapshot and identifies the task within a run.
type StagingTask struct {
	Index    int            `json:"index"`
	Source   PhotoIdentity  `json:"source"`
	Enhanced *EnhancedPhoto `json:"enhanced,omitempty"`
	State    TaskState      `json:"state"`
	Error    string         `json:"error,omitempty"`
}
