package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/scribe/internal/domain/transcript"
)

// DefaultPageSize bounds query pages when no page size is configured.
const DefaultPageSize = 100

const (
	findConversationStartQuery = `
		SELECT 1 FROM transcript_records
		WHERE channel_id = ? AND conversation_id = ? AND start = 1
		LIMIT 1`

	insertRecordQuery = `
		INSERT INTO transcript_records (id, channel_id, conversation_id, start, ts, doc)
		VALUES (?, ?, ?, ?, ?, ?)`

	deleteRecordQuery = `DELETE FROM transcript_records WHERE id = ?`
)

// TranscriptStoreOptions configures a TranscriptStore.
type TranscriptStoreOptions struct {
	// PageSize is the maximum number of records per query page.
	PageSize int
	// CacheLimit bounds the seen-conversation key cache.
	CacheLimit int
}

// TranscriptStore implements transcript.Store and transcript.Deleter over
// a SQLite collection of JSON activity documents.
type TranscriptStore struct {
	db       *DB
	logger   *slog.Logger
	init     *transcript.Initializer
	seen     *transcript.KeySet
	pageSize int
}

// NewTranscriptStore creates a transcript store over db. The schema is
// created lazily, exactly once, before the first operation.
func NewTranscriptStore(db *DB, opts TranscriptStoreOptions, logger *slog.Logger) *TranscriptStore {
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &TranscriptStore{
		db:       db,
		logger:   logger,
		init:     transcript.NewInitializer(db.EnsureSchema),
		seen:     transcript.NewKeySet(opts.CacheLimit),
		pageSize: pageSize,
	}
}

// LogActivity appends one activity record. The start flag is decided from
// the local key cache, falling back to a point query on first sight of a
// conversation. Two racing writers for a new conversation may both write
// start = 1; readers collapse the duplicates.
func (s *TranscriptStore) LogActivity(ctx context.Context, activity *transcript.Activity) error {
	if err := s.init.Wait(ctx); err != nil {
		return fmt.Errorf("initializing transcript store: %w", err)
	}

	start := false
	if !s.seen.Seen(activity.Key()) {
		exists, err := s.conversationStarted(ctx, activity.ChannelID, activity.Conversation.ID)
		if err != nil {
			return err
		}
		start = !exists
	}

	doc, err := json.Marshal(transcript.Record{Activity: activity, Start: start})
	if err != nil {
		return fmt.Errorf("encoding transcript record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertRecordQuery,
		uuid.New().String(),
		activity.ChannelID,
		activity.Conversation.ID,
		start,
		activity.Timestamp.UTC().UnixNano(),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("inserting transcript record: %w", err)
	}

	return nil
}

// GetTranscriptActivities returns one page of a conversation's activities
// in ascending timestamp order, optionally bounded below by StartDate.
func (s *TranscriptStore) GetTranscriptActivities(ctx context.Context, channelID, conversationID string, opts transcript.ActivityPageOptions) (transcript.PagedResult[transcript.Activity], error) {
	var page transcript.PagedResult[transcript.Activity]
	if err := s.init.Wait(ctx); err != nil {
		return page, fmt.Errorf("initializing transcript store: %w", err)
	}

	rows, next, err := s.listActivityPage(ctx, channelID, conversationID, opts.ContinuationToken, opts.StartDate)
	if err != nil {
		return page, err
	}

	page.Items = make([]transcript.Activity, 0, len(rows))
	for _, row := range rows {
		var record transcript.Record
		if err := json.Unmarshal(row.doc, &record); err != nil {
			return transcript.PagedResult[transcript.Activity]{}, fmt.Errorf("decoding transcript record: %w", err)
		}
		page.Items = append(page.Items, *record.Activity)
	}
	page.ContinuationToken = next
	return page, nil
}

// ListTranscripts returns one page of distinct conversations for a
// channel. The engine query walks start records newest-first; duplicate
// start records for one conversation are collapsed to the earliest.
// Continuation applies to the underlying record set, so a conversation
// whose duplicates straddle a page boundary may surface on both pages.
func (s *TranscriptStore) ListTranscripts(ctx context.Context, channelID, continuationToken string) (transcript.PagedResult[transcript.Info], error) {
	var page transcript.PagedResult[transcript.Info]
	if err := s.init.Wait(ctx); err != nil {
		return page, fmt.Errorf("initializing transcript store: %w", err)
	}

	query := `
		SELECT rowid, conversation_id, ts FROM transcript_records
		WHERE channel_id = ? AND start = 1`
	args := []any{channelID}

	if continuationToken != "" {
		cursor, err := decodeCursor(continuationToken)
		if err != nil {
			return page, err
		}
		query += " AND (ts < ? OR (ts = ? AND rowid < ?))"
		args = append(args, cursor.TS, cursor.TS, cursor.Seq)
	}

	query += " ORDER BY ts DESC, rowid DESC LIMIT ?"
	args = append(args, s.pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return page, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	type startRow struct {
		seq    int64
		convID string
		ts     int64
	}
	var starts []startRow
	for rows.Next() {
		var row startRow
		if err := rows.Scan(&row.seq, &row.convID, &row.ts); err != nil {
			return page, fmt.Errorf("scanning start record: %w", err)
		}
		starts = append(starts, row)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("iterating start records: %w", err)
	}

	if len(starts) > s.pageSize {
		starts = starts[:s.pageSize]
		last := starts[len(starts)-1]
		page.ContinuationToken = encodeCursor(last.ts, last.seq)
	}

	// Collapse duplicate start records to the earliest per conversation,
	// preserving first-seen order.
	index := make(map[string]int)
	page.Items = make([]transcript.Info, 0, len(starts))
	for _, row := range starts {
		info := transcript.Info{
			ChannelID: channelID,
			ID:        row.convID,
			Created:   time.Unix(0, row.ts).UTC(),
		}
		if at, ok := index[info.Key()]; ok {
			if info.Created.Before(page.Items[at].Created) {
				page.Items[at] = info
			}
			continue
		}
		index[info.Key()] = len(page.Items)
		page.Items = append(page.Items, info)
	}

	return page, nil
}

// DeleteTranscript removes every record of a conversation, page by page.
// Each record is deleted individually; a failure mid-batch leaves earlier
// deletions applied.
func (s *TranscriptStore) DeleteTranscript(ctx context.Context, channelID, conversationID string) error {
	if err := s.init.Wait(ctx); err != nil {
		return fmt.Errorf("initializing transcript store: %w", err)
	}

	token := ""
	deleted := 0
	for {
		rows, next, err := s.listActivityPage(ctx, channelID, conversationID, token, time.Time{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := s.db.ExecContext(ctx, deleteRecordQuery, row.id); err != nil {
				return fmt.Errorf("deleting transcript record: %w", err)
			}
			deleted++
		}
		if next == "" {
			break
		}
		token = next
	}

	s.logger.Debug("transcript records deleted",
		"channel_id", channelID,
		"conversation_id", conversationID,
		"count", deleted)
	return nil
}

func (s *TranscriptStore) conversationStarted(ctx context.Context, channelID, conversationID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, findConversationStartQuery, channelID, conversationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking conversation start: %w", err)
	}
	return true, nil
}

type recordRow struct {
	id  string
	seq int64
	ts  int64
	doc []byte
}

func (s *TranscriptStore) listActivityPage(ctx context.Context, channelID, conversationID, continuationToken string, startDate time.Time) ([]recordRow, string, error) {
	query := `
		SELECT id, rowid, ts, doc FROM transcript_records
		WHERE channel_id = ? AND conversation_id = ?`
	args := []any{channelID, conversationID}

	if !startDate.IsZero() {
		query += " AND ts >= ?"
		args = append(args, startDate.UTC().UnixNano())
	}
	if continuationToken != "" {
		cursor, err := decodeCursor(continuationToken)
		if err != nil {
			return nil, "", err
		}
		query += " AND (ts > ? OR (ts = ? AND rowid > ?))"
		args = append(args, cursor.TS, cursor.TS, cursor.Seq)
	}

	query += " ORDER BY ts ASC, rowid ASC LIMIT ?"
	args = append(args, s.pageSize+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("listing transcript activities: %w", err)
	}
	defer rows.Close()

	var records []recordRow
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(&row.id, &row.seq, &row.ts, &row.doc); err != nil {
			return nil, "", fmt.Errorf("scanning transcript record: %w", err)
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterating transcript records: %w", err)
	}

	next := ""
	if len(records) > s.pageSize {
		records = records[:s.pageSize]
		last := records[len(records)-1]
		next = encodeCursor(last.ts, last.seq)
	}
	return records, next, nil
}
