package models

type ChatQueryRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language"`
}
