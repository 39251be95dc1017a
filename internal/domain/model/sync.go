package model

import "fmt"

// SyncResult describes the outcome of one sync run. Not persisted.
type SyncResult struct {
	Message string
	Count   int
}

func NewSyncResult(username string, count int) *SyncResult {
	return &SyncResult{
		Message: fmt.Sprintf("Successfully synced %d repositories for user %s", count, username),
		Count:   count,
	}
}
