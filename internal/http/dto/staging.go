package dto

import (
	"fmt"
	"strconv"

	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/staging"
)

type StageRequest struct {
	PhotoIndexes []int `json:"photo_indexes"`
}

type StagingTaskResponse struct {
	Index       int     `json:"index"`
	Photo       string  `json:"photo"`
	State       string  `json:"state"`
	Error       string  `json:"error,omitempty"`
	MimeType    string  `json:"mime_type,omitempty"`
	EnhancedURL *string `json:"enhanced_url,omitempty"`
}

type StagingRunResponse struct {
	RunID     int64                 `json:"run_id,string"`
	Done      bool                  `json:"done"`
	AnyFailed bool                  `json:"any_failed"`
	Tasks     []StagingTaskResponse `json:"tasks"`
}

// ToStagingRunResponse renders a run; basePath is the prefix under which
// enhanced photos are served.
func ToStagingRunResponse(run *staging.Run, basePath string) *StagingRunResponse {
	tasks := run.Tasks()
	resp := &StagingRunResponse{
		RunID:     run.ID,
		AnyFailed: run.AnyFailed(),
		Tasks:     make([]StagingTaskResponse, len(tasks)),
	}
	select {
	case <-run.Done():
		resp.Done = true
	default:
	}

	for i, t := range tasks {
		resp.Tasks[i] = toStagingTaskResponse(t, basePath)
	}
	return resp
}

func toStagingTaskResponse(t model.StagingTask, basePath string) StagingTaskResponse {
	out := StagingTaskResponse{
		Index: t.Index,
		Photo: t.Source.Name,
		State: string(t.State),
		Error: t.Error,
	}
	if t.State == model.TaskStateSucceeded && t.Enhanced != nil {
		url := fmt.Sprintf("%s/%d", basePath, t.Index)
		out.MimeType = t.Enhanced.MimeType
		out.EnhancedURL = &url
	}
	return out
}

// StagingStatusEvent is one task transition read back from the status stream.
type StagingStatusEvent struct {
	ID    string `json:"id"`
	RunID int64  `json:"run_id,string"`
	StagingTaskResponse
	Timestamp string `json:"ts"`
}

// ToStagingStatusEvent decodes the fields written by the staging status
// publisher. Stream values arrive as strings.
func ToStagingStatusEvent(id string, values map[string]any, basePath string) (StagingStatusEvent, error) {
	field := func(key string) string {
		v, ok := values[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}

	runID, err := strconv.ParseInt(field("run_id"), 10, 64)
	if err != nil {
		return StagingStatusEvent{}, fmt.Errorf("invalid run_id in %s: %w", id, err)
	}
	index, err := strconv.Atoi(field("index"))
	if err != nil {
		return StagingStatusEvent{}, fmt.Errorf("invalid index in %s: %w", id, err)
	}

	event := StagingStatusEvent{
		ID:    id,
		RunID: runID,
		StagingTaskResponse: StagingTaskResponse{
			Index: index,
			Photo: field("photo"),
			State: field("state"),
			Error: field("error"),
		},
		Timestamp: field("ts"),
	}
	if event.State == string(model.TaskStateSucceeded) && field("mime_type") != "" {
		url := fmt.Sprintf("%s/%d", basePath, index)
		event.MimeType = field("mime_type")
		event.EnhancedURL = &url
	}
	return event, nil
}
