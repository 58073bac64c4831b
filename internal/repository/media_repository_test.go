package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens-api/internal/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func TestMediaCreateImage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	mock.ExpectExec("INSERT INTO report_images").WillReturnResult(sqlmock.NewResult(1, 1))

	img := &models.ReportImage{ReportID: "r1", FileRef: "reports/r1/a.jpg", Size: int64Ptr(1024)}
	err := repo.CreateImage(context.Background(), img)
	require.NoError(t, err)
	assert.NotEmpty(t, img.ID)
	assert.False(t, img.UploadedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaCreatePrimaryImageDemotesSiblings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_images SET is_primary = false WHERE report_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO report_images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	img := &models.ReportImage{ReportID: "r1", FileRef: "reports/r1/b.jpg", IsPrimary: true, Size: int64Ptr(2048)}
	err := repo.CreateImage(context.Background(), img)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaSetPrimary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_images SET is_primary = false WHERE report_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_images SET is_primary = true WHERE id = $1 AND report_id = $2")).
		WithArgs("i2", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetPrimary(context.Background(), "r1", "i2")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaSetPrimaryUnknownImage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_images SET is_primary = false WHERE report_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_images SET is_primary = true WHERE id = $1 AND report_id = $2")).
		WithArgs("missing", "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetPrimary(context.Background(), "r1", "missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaListImagesOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "report_id", "file_ref", "caption", "is_primary", "size", "uploaded_at"}).
		AddRow("i2", "r1", "reports/r1/b.jpg", "after", true, 2048, now).
		AddRow("i1", "r1", "reports/r1/a.jpg", "before", false, 1024, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM report_images WHERE report_id = \\$1 ORDER BY is_primary DESC, uploaded_at DESC").
		WithArgs("r1").
		WillReturnRows(rows)

	images, err := repo.ListImages(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaCreateVideo(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMediaRepository(db)

	mock.ExpectExec("INSERT INTO report_videos").WillReturnResult(sqlmock.NewResult(1, 1))

	vid := &models.ReportVideo{ReportID: "r1", FileRef: "reports/r1/clip.mp4", Size: int64Ptr(4096), Duration: intPtr(12)}
	err := repo.CreateVideo(context.Background(), vid)
	require.NoError(t, err)
	assert.NotEmpty(t, vid.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
