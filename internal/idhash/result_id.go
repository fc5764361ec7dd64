package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeResultID computes a deterministic event-result identifier.
// Formula: SHA256(ticker|benchmark|event date as yyyy-mm-dd UTC).
// Returns hex-encoded hash (64 characters). The same (ticker, benchmark,
// event) always maps to the same ID, so re-running a study upserts
// nothing and duplicates are caught by the store.
func ComputeResultID(ticker, benchmark string, eventDate time.Time) string {
	data := fmt.Sprintf("%s|%s|%s",
		ticker,
		benchmark,
		eventDate.UTC().Format("2006-01-02"),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
