package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/cartage-systems/cartage/internal/intake"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIngestDocument is the task type for ingesting one extracted document.
	TaskIngestDocument = "intake:document"
)

// NewIngestDocumentTask constructs an Asynq task from extracted fields.
func NewIngestDocumentTask(fields intake.CandidateFields) (*asynq.Task, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIngestDocument, data), nil
}

// NewIngestDocumentHandler returns the handler for TaskIngestDocument tasks.
// Duplicate documents complete successfully so a redelivered batch never
// piles up in the retry queue.
func NewIngestDocumentHandler(service *intake.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var fields intake.CandidateFields
		if err := json.Unmarshal(t.Payload(), &fields); err != nil {
			return asynq.SkipRetry
		}
		outcome, err := service.Ingest(ctx, fields)
		if err != nil {
			return err
		}
		logger.Info("document ingested",
			slog.String("source_name", fields.SourceName),
			slog.Bool("duplicate", outcome.Duplicate),
			slog.String("resolution", string(outcome.Resolution)))
		return nil
	}
}
