package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditStageTransitions(t *testing.T) {
	assert.True(t, StageQueued.CanTransition(StageDNS))
	assert.True(t, StageQueued.CanTransition(StageReport), "stages may be skipped")
	assert.True(t, StageSSL.CanTransition(StageFailed))
	assert.True(t, StageReport.CanTransition(StageCompleted))

	assert.False(t, StageSSL.CanTransition(StageDNS), "no moving backwards")
	assert.False(t, StageSSL.CanTransition(StageSSL))
	assert.False(t, StageCompleted.CanTransition(StageFailed))
	assert.False(t, StageFailed.CanTransition(StageQueued))
	assert.False(t, StageQueued.CanTransition("bogus"))
}

func TestAuditStageProgress(t *testing.T) {
	assert.Equal(t, 0, StageQueued.Progress())
	assert.Equal(t, 50, StageHeaders.Progress())
	assert.Equal(t, 100, StageCompleted.Progress())
	assert.Equal(t, 0, StageFailed.Progress())
	assert.Equal(t, 0, AuditStage("bogus").Progress())
}

func TestAuditStageValidity(t *testing.T) {
	for _, s := range []AuditStage{StageQueued, StageDNS, StageSSL, StageHeaders, StageVulnerabilities, StageReport, StageCompleted, StageFailed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, AuditStage("").Valid())
	assert.True(t, StageCompleted.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageReport.Terminal())
}
