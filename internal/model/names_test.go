package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCategoryName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Code Review", "CODE_REVIEW"},
		{"  Manual Review Work  ", "MANUAL_REVIEW_WORK"},
		{"Pair   Programming", "PAIR_PROGRAMMING"},
		{"already_system", "ALREADY_SYSTEM"},
		{"Solo", "SOLO"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCategoryName(tt.label))
		})
	}
}

func TestDeriveTagName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Slack Ping", "slack-ping"},
		{"High   Priority", "high-priority"},
		{"  Triage ", "triage"},
		{"slack-ping", "slack-ping"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTagName(tt.label))
		})
	}
}

func TestTriggerField_Valid(t *testing.T) {
	assert.True(t, TriggerDescription.Valid())
	assert.True(t, TriggerLink.Valid())
	assert.False(t, TriggerField("title").Valid())
	assert.False(t, TriggerField("").Valid())
}

func TestTaskDetail_HasTag(t *testing.T) {
	detail := TaskDetail{Tags: []Tag{{Name: "slack-ping"}, {Name: "triage"}}}

	assert.True(t, detail.HasTag("slack-ping"))
	assert.False(t, detail.HasTag("webinar"))
}
