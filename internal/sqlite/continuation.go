package sqlite

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/rpggio/scribe/internal/domain/transcript"
)

// pageCursor marks the last row of a served page. Pagination is keyset
// based on (ts, rowid): rows already served are never revisited, so the
// delete loop can follow continuations while it removes rows.
type pageCursor struct {
	TS  int64 `json:"t"`
	Seq int64 `json:"s"`
}

func encodeCursor(ts, seq int64) string {
	data, _ := json.Marshal(pageCursor{TS: ts, Seq: seq})
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(token string) (pageCursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return pageCursor{}, fmt.Errorf("%w: %v", transcript.ErrInvalidContinuation, err)
	}
	var cursor pageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return pageCursor{}, fmt.Errorf("%w: %v", transcript.ErrInvalidContinuation, err)
	}
	return cursor, nil
}
