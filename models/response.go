package models

type ChatQueryResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Timestamp string   `json:"timestamp"`
}

type ChatHistoryResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

type DatasetListResponse struct {
	Datasets []DatasetDescriptor `json:"datasets"`
	Total    int                 `json:"total"`
}
