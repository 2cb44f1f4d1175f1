package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidReportTarget(t *testing.T) {
	assert.True(t, ValidReportTarget(ReportTargetItem))
	assert.True(t, ValidReportTarget(ReportTargetUser))
	assert.True(t, ValidReportTarget(ReportTargetConversation))
	assert.False(t, ValidReportTarget("comment"))
	assert.False(t, ValidReportTarget(""))
}

func TestValidReportReason(t *testing.T) {
	// Причина привязана к типу цели
	assert.True(t, ValidReportReason(ReportTargetItem, "Scam"))
	assert.True(t, ValidReportReason(ReportTargetUser, "Harassment"))
	assert.True(t, ValidReportReason(ReportTargetConversation, "Spam"))

	assert.False(t, ValidReportReason(ReportTargetItem, "Harassment"))
	assert.False(t, ValidReportReason(ReportTargetUser, "Scam"))
	assert.False(t, ValidReportReason(ReportTargetItem, ""))
	assert.False(t, ValidReportReason("comment", "Other"))
}

func TestEveryTargetHasOther(t *testing.T) {
	for target := range ReportReasons {
		assert.True(t, ValidReportReason(target, "Other"), "target %s", target)
	}
}

func TestReportSerialization(t *testing.T) {
	report := Report{
		ID:         uuid.New(),
		ReporterID: uuid.New(),
		TargetType: ReportTargetItem,
		TargetID:   uuid.New(),
		Reason:     "Scam",
		CreatedAt:  time.Now(),
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, report.TargetID.String(), decoded["target_id"])
	assert.Equal(t, "item", decoded["target_type"])
	assert.Equal(t, "Scam", decoded["reason"])

	// Пустое описание не сериализуется
	_, hasDescription := decoded["description"]
	assert.False(t, hasDescription)
}
