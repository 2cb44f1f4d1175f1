package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы целей жалобы
const (
	ReportTargetItem         = "item"
	ReportTargetUser         = "user"
	ReportTargetConversation = "conversation"
)

// ReportReasons задает фиксированный словарь причин для каждого типа цели
var ReportReasons = map[string][]string{
	ReportTargetItem:         {"Scam", "Stolen Photo", "Prohibited Item", "Other"},
	ReportTargetUser:         {"Fraud/Scam", "Harassment", "Inappropriate Behavior", "Other"},
	ReportTargetConversation: {"Inappropriate Content", "Offensive Language", "Spam", "Other"},
}

// Report представляет жалобу. Запись создается один раз и не имеет
// жизненного цикла после создания.
type Report struct {
	ID          uuid.UUID `json:"id"`
	ReporterID  uuid.UUID `json:"reporter_id"`
	TargetType  string    `json:"target_type"`
	TargetID    uuid.UUID `json:"target_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidReportTarget проверяет тип цели жалобы
func ValidReportTarget(targetType string) bool {
	_, ok := ReportReasons[targetType]
	return ok
}

// ValidReportReason проверяет, что причина входит в словарь для данного типа цели
func ValidReportReason(targetType, reason string) bool {
	reasons, ok := ReportReasons[targetType]
	if !ok {
		return false
	}
	for _, r := range reasons {
		if r == reason {
			return true
		}
	}
	return false
}
