// Package job holds scheduled maintenance work.
package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-board-api/internal/repository"
	"library-board-api/internal/storage"
)

// PurgeJob removes the attachments of posts that were soft-deleted longer
// than the retention period ago. Post rows themselves are kept; only their
// files and attachment metadata go.
type PurgeJob struct {
	postRepo       repository.PostRepository
	attachmentRepo repository.AttachmentRepository
	store          *storage.FileStore
	retention      time.Duration
	logger         *zap.Logger
}

// NewPurgeJob creates a new PurgeJob instance
func NewPurgeJob(
	postRepo repository.PostRepository,
	attachmentRepo repository.AttachmentRepository,
	store *storage.FileStore,
	retention time.Duration,
	logger *zap.Logger,
) *PurgeJob {
	return &PurgeJob{
		postRepo:       postRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		retention:      retention,
		logger:         logger,
	}
}

// Run executes one purge pass. It satisfies cron.Job.
func (j *PurgeJob) Run() {
	ctx := context.Background()
	cutoff := time.Now().Add(-j.retention)

	j.logger.Info("Starting attachment purge for deleted posts",
		zap.Time("cutoff", cutoff),
	)

	posts, err := j.postRepo.FindDeletedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to find deleted posts", zap.Error(err))
		return
	}
	if len(posts) == 0 {
		j.logger.Info("No deleted posts past retention")
		return
	}

	purgedFiles := 0
	purgedRows := 0
	for _, post := range posts {
		attachments, err := j.attachmentRepo.FindByPostID(ctx, post.ID)
		if err != nil {
			j.logger.Error("Failed to load attachments for deleted post",
				zap.String("post_id", post.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if len(attachments) == 0 {
			continue
		}

		ids := make([]uuid.UUID, 0, len(attachments))
		for _, att := range attachments {
			// Best-effort physical delete; a missing file never blocks the
			// metadata removal
			j.store.Delete(ctx, att.FilePath, att.StoredName)
			purgedFiles++
			ids = append(ids, att.ID)
		}

		if err := j.attachmentRepo.DeleteBatch(ctx, ids); err != nil {
			j.logger.Error("Failed to delete attachment metadata",
				zap.String("post_id", post.ID.String()),
				zap.Int("count", len(ids)),
				zap.Error(err),
			)
			continue
		}
		purgedRows += len(ids)
	}

	j.logger.Info("Attachment purge completed",
		zap.Int("deleted_posts", len(posts)),
		zap.Int("files_deleted", purgedFiles),
		zap.Int("rows_deleted", purgedRows),
	)
}
