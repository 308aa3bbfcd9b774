package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendQuizEvent(ctx context.Context, data QuizEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO quiz_events
		(sequence, timestamp, topic, subject, score, total, review)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.Topic, data.Subject, data.Score, data.Total, data.Review,
	)
	if err != nil {
		return fmt.Errorf("save quiz event: %w", err)
	}
	return nil
}

// QueryQuizEvents returns quiz results newest first.
func (r *eventRepo) QueryQuizEvents(ctx context.Context, opts QueryOpts) ([]QuizEvent, error) {
	where, args := whereClause(opts, "topic", opts.Topic)
	q := `SELECT id, sequence, timestamp, topic, subject, score, total, review
		FROM quiz_events` + where + ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz events: %w", err)
	}
	defer rows.Close()

	var out []QuizEvent
	for rows.Next() {
		var (
			e  QuizEvent
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Topic, &e.Subject, &e.Score, &e.Total, &e.Review); err != nil {
			return nil, fmt.Errorf("scan quiz event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) AppendChatEvent(ctx context.Context, data ChatEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO chat_events
		(sequence, timestamp, topic, question, answer, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.Topic, data.Question, data.Answer,
		boolToInt(data.Success), data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save chat event: %w", err)
	}
	return nil
}

// QueryChatEvents returns chat exchanges oldest first, the order they are
// read back in a transcript.
func (r *eventRepo) QueryChatEvents(ctx context.Context, opts QueryOpts) ([]ChatEvent, error) {
	where, args := whereClause(opts, "topic", opts.Topic)
	q := `SELECT id, sequence, timestamp, topic, question, answer, success, error_message
		FROM chat_events` + where + ` ORDER BY sequence ASC`
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat events: %w", err)
	}
	defer rows.Close()

	var out []ChatEvent
	for rows.Next() {
		var (
			e       ChatEvent
			ts      int64
			success int
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Topic, &e.Question, &e.Answer, &success, &e.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan chat event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Success = success == 1
		out = append(out, e)
	}
	return out, rows.Err()
}
