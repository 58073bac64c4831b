package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civiclens/civiclens-api/internal/models"
)

// MediaRepository manages persistence for report images and videos.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository constructs a new repository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// CreateImage inserts a new report image. When the image is marked primary,
// clearing the flag on every sibling and inserting the new row happen inside
// one transaction so at most one primary can ever be observed.
func (r *MediaRepository) CreateImage(ctx context.Context, img *models.ReportImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now().UTC()
	}

	insert := `INSERT INTO report_images (id, report_id, file_ref, caption, is_primary, size, uploaded_at)
VALUES (:id, :report_id, :file_ref, :caption, :is_primary, :size, :uploaded_at)`

	if !img.IsPrimary {
		if _, err := r.db.NamedExecContext(ctx, insert, img); err != nil {
			return fmt.Errorf("create report image: %w", err)
		}
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin image transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "UPDATE report_images SET is_primary = false WHERE report_id = $1", img.ReportID); err != nil {
		return fmt.Errorf("clear primary images: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insert, img); err != nil {
		return fmt.Errorf("create report image: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit image transaction: %w", err)
	}
	return nil
}

// SetPrimary promotes an existing image to primary, demoting all siblings in
// the same transaction.
func (r *MediaRepository) SetPrimary(ctx context.Context, reportID, imageID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin image transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "UPDATE report_images SET is_primary = false WHERE report_id = $1", reportID); err != nil {
		return fmt.Errorf("clear primary images: %w", err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE report_images SET is_primary = true WHERE id = $1 AND report_id = $2", imageID, reportID)
	if err != nil {
		return fmt.Errorf("set primary image: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("set primary image: image %s not found on report %s", imageID, reportID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit image transaction: %w", err)
	}
	return nil
}

// ListImages returns a report's images, primary first, newest next.
func (r *MediaRepository) ListImages(ctx context.Context, reportID string) ([]models.ReportImage, error) {
	var images []models.ReportImage
	query := `SELECT id, report_id, file_ref, caption, is_primary, size, uploaded_at
FROM report_images WHERE report_id = $1 ORDER BY is_primary DESC, uploaded_at DESC`
	if err := r.db.SelectContext(ctx, &images, query, reportID); err != nil {
		return nil, fmt.Errorf("list report images: %w", err)
	}
	return images, nil
}

// CreateVideo inserts a new report video.
func (r *MediaRepository) CreateVideo(ctx context.Context, vid *models.ReportVideo) error {
	if vid.ID == "" {
		vid.ID = uuid.NewString()
	}
	if vid.UploadedAt.IsZero() {
		vid.UploadedAt = time.Now().UTC()
	}
	query := `INSERT INTO report_videos (id, report_id, file_ref, caption, size, duration, uploaded_at)
VALUES (:id, :report_id, :file_ref, :caption, :size, :duration, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, vid); err != nil {
		return fmt.Errorf("create report video: %w", err)
	}
	return nil
}

// ListVideos returns a report's videos, newest first.
func (r *MediaRepository) ListVideos(ctx context.Context, reportID string) ([]models.ReportVideo, error) {
	var videos []models.ReportVideo
	query := `SELECT id, report_id, file_ref, caption, size, duration, uploaded_at
FROM report_videos WHERE report_id = $1 ORDER BY uploaded_at DESC`
	if err := r.db.SelectContext(ctx, &videos, query, reportID); err != nil {
		return nil, fmt.Errorf("list report videos: %w", err)
	}
	return videos, nil
}
