package dto

import "github.com/pulseplan/pulseplan-api/internal/models"

// AnalysisRequest captures the POST /analysis payload.
type AnalysisRequest struct {
	ForceRegenerate bool `json:"forceRegenerate"`
}

// AnalysisAccepted is returned after a task is created or deduplicated.
type AnalysisAccepted struct {
	TaskID string            `json:"taskId"`
	Status models.TaskStatus `json:"status"`
}

// AnalysisStatusResponse exposes task progress metadata for polling.
type AnalysisStatusResponse struct {
	Task        *models.AnalysisTask `json:"task"`
	IsCompleted bool                 `json:"isCompleted"`
	Message     string               `json:"message"`
}
