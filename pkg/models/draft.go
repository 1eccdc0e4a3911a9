package models

import "time"

// DraftStatus records how the parser judged the model output
type DraftStatus string

const (
	DraftOK        DraftStatus = "ok"
	DraftTruncated DraftStatus = "truncated"
	DraftMalformed DraftStatus = "malformed"
)

// Draft is generated content held for review before persistence
type Draft struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Status    DraftStatus       `json:"status"`
	Attempts  int               `json:"attempts"`
	Request   GenerationRequest `json:"request"`
	Content   GeneratedContent  `json:"content"`
}

// Persistable reports whether the draft came from complete, well-formed output
func (d *Draft) Persistable() bool {
	return d.Status == DraftOK
}

// SessionStats tracks statistics for a persistence session
type SessionStats struct {
	StartTime     time.Time
	EndTime       time.Time
	TotalItems    int
	SavedItems    int
	FailedNodes   int
	SkippedNodes  int
	TotalDuration time.Duration
}
