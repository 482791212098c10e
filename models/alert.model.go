package models

import "time"

type Alert struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	ParentID       string     `json:"parentId"`
	SitterID       *string    `json:"sitterId"`
	Type           string     `json:"type"`
	Message        string     `json:"message"`
	Severity       string     `json:"severity"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt"`
	ResolvedAt     *time.Time `json:"resolvedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func AlertFromRow(row map[string]any) Alert {
	a := Alert{
		ID:             rowString(row, "id"),
		SessionID:      rowString(row, "session_id"),
		ParentID:       rowString(row, "parent_id"),
		SitterID:       rowStringPtr(row, "sitter_id"),
		Type:           rowString(row, "type"),
		Message:        rowString(row, "message"),
		Severity:       rowString(row, "severity"),
		AcknowledgedAt: rowTimePtr(row, "acknowledged_at"),
		ResolvedAt:     rowTimePtr(row, "resolved_at"),
		CreatedAt:      rowTime(row, "created_at"),
	}
	if a.Severity == "" {
		a.Severity = "info"
	}
	return a
}
