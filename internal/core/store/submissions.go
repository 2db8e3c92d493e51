package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// DefaultListLimit caps ListSubmissions when the caller passes no limit.
const DefaultListLimit = 50

// CreateSubmission stores a validated submission.
func (s *Store) CreateSubmission(ctx context.Context, sub *schema.Submission) error {
	data := sub.Data
	if data == nil {
		data = types.Values{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode submission data: %w", err)
	}
	meta, err := nullJSON(sub.Metadata, len(sub.Metadata) == 0)
	if err != nil {
		return fmt.Errorf("failed to encode submission metadata: %w", err)
	}

	if _, err := s.queries.Exec(ctx, s.conn, "insert-submission",
		string(sub.ID), string(sub.FormID), string(encoded), meta, sub.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// GetSubmission loads one submission.
func (s *Store) GetSubmission(ctx context.Context, id types.SubmissionID) (*schema.Submission, error) {
	var row submissionRow
	if err := s.queries.Get(ctx, s.conn, "get-submission", &row, string(id)); err != nil {
		return nil, notFound(err, types.ErrSubmissionNotFound)
	}
	sub, err := row.toSubmission()
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmissions returns up to limit of a form's most recent submissions,
// newest first.
func (s *Store) ListSubmissions(ctx context.Context, formID types.FormID, limit int) ([]schema.Submission, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []submissionRow
	if err := s.queries.Select(ctx, s.conn, "list-submissions", &rows, string(formID), limit); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	subs := make([]schema.Submission, 0, len(rows))
	for _, r := range rows {
		sub, err := r.toSubmission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// CountSubmissions returns the number of stored submissions for a form.
func (s *Store) CountSubmissions(ctx context.Context, formID types.FormID) (int, error) {
	var n int
	if err := s.queries.Get(ctx, s.conn, "count-submissions", &n, string(formID)); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

// DeleteSubmission removes one submission.
func (s *Store) DeleteSubmission(ctx context.Context, id types.SubmissionID) error {
	res, err := s.queries.Exec(ctx, s.conn, "delete-submission", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return affected(res, types.ErrSubmissionNotFound)
}
