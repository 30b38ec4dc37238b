package ingest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// NewSubmissionNumber formats SUB-YYYYMMDD-XXXXXX from the UTC date and three
// random bytes read from r.
func NewSubmissionNumber(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	var b [3]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", fmt.Errorf("submission number: %w", err)
	}
	return "SUB-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b[:])), nil
}
