package models

import "time"

type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"sessionId"`
	SenderID  string     `json:"senderId"`
	Content   string     `json:"content"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func MessageFromRow(row map[string]any) Message {
	return Message{
		ID:        rowString(row, "id"),
		SessionID: rowString(row, "session_id"),
		SenderID:  rowString(row, "sender_id"),
		Content:   rowString(row, "content"),
		ReadAt:    rowTimePtr(row, "read_at"),
		CreatedAt: rowTime(row, "created_at"),
	}
}
