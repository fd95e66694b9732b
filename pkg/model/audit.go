package model

import (
	"time"
)

// AuditStage is a step of the external scan pipeline
type AuditStage string

const (
	StageQueued          AuditStage = "queued"
	StageDNS             AuditStage = "dns"
	StageSSL             AuditStage = "ssl"
	StageHeaders         AuditStage = "headers"
	StageVulnerabilities AuditStage = "vulnerabilities"
	StageReport          AuditStage = "report"
	StageCompleted       AuditStage = "completed"
	StageFailed          AuditStage = "failed"
)

// auditPipeline lists the forward stages in pipeline order
var auditPipeline = []AuditStage{
	StageQueued,
	StageDNS,
	StageSSL,
	StageHeaders,
	StageVulnerabilities,
	StageReport,
	StageCompleted,
}

func stageIndex(s AuditStage) int {
	for i, stage := range auditPipeline {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage
func (s AuditStage) Valid() bool {
	return s == StageFailed || stageIndex(s) >= 0
}

// Terminal reports whether no further transition is possible
func (s AuditStage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// CanTransition reports whether the pipeline may move from s to next.
// Stages only move forward; any non-terminal stage may fail.
func (s AuditStage) CanTransition(next AuditStage) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == StageFailed {
		return true
	}
	return stageIndex(next) > stageIndex(s)
}

// Progress returns the completion percentage shown in the progress popup
func (s AuditStage) Progress() int {
	if s == StageFailed {
		return 0
	}
	idx := stageIndex(s)
	if idx < 0 {
		return 0
	}
	return idx * 100 / (len(auditPipeline) - 1)
}

// AuditOrder represents an audit dispatched to a scanning region
type AuditOrder struct {
	ID        int        `json:"id" db:"id"`
	AuditID   string     `json:"audit_id" db:"audit_id"`
	UserID    int        `json:"user_id" db:"user_id"`
	TargetURL string     `json:"target_url" db:"target_url"`
	Region    RegionID   `json:"region" db:"region"`
	Stage     AuditStage `json:"stage" db:"stage"`
	Message   string     `json:"message" db:"message"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// AuditSubmitRequest is the payload for POST /api/audits
type AuditSubmitRequest struct {
	URL      string `json:"url" binding:"required"`
	Region   string `json:"region"`
	Timezone string `json:"timezone"`
}

// AuditSubmitResponse is returned after an audit has been dispatched
type AuditSubmitResponse struct {
	AuditID       string     `json:"audit_id"`
	Region        RegionID   `json:"region"`
	DisplayName   string     `json:"display_name"`
	EgressAddress string     `json:"egress_address"`
	Stage         AuditStage `json:"stage"`
}

// AuditStatusResponse is what the progress popup polls
type AuditStatusResponse struct {
	AuditOrder
	Progress int `json:"progress"`
}

// AuditCallback is posted by the scan pipeline on every stage change
type AuditCallback struct {
	AuditID string     `json:"audit_id" binding:"required"`
	Stage   AuditStage `json:"stage" binding:"required"`
	Message string     `json:"message"`
}
