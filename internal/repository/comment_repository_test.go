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

func TestCommentListByReportNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "report_id", "user_id", "content", "parent_id", "is_staff_response", "is_hidden", "edited", "created_at", "updated_at"}).
		AddRow("c2", "r1", "u2", "later", nil, false, false, false, now, now).
		AddRow("c1", "r1", "u1", "earlier", nil, false, false, false, now.Add(-time.Minute), now.Add(-time.Minute))
	mock.ExpectQuery("SELECT (.+) FROM comments WHERE report_id = \\$1 ORDER BY created_at DESC").
		WithArgs("r1").
		WillReturnRows(rows)

	comments, err := repo.ListByReport(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c2", comments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(1, 1))

	comment := &models.Comment{ReportID: "r1", UserID: "u1", Content: "Still there this morning."}
	err := repo.Create(context.Background(), comment)
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentUpdateContentMarksEdited(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE comments SET content = $2, edited = true, updated_at = $3 WHERE id = $1")).
		WithArgs("c1", "Still there this morning.", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateContent(context.Background(), "c1", "Still there this morning."))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentUpdateVisibilityLeavesEditedAlone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE comments SET is_hidden = $2 WHERE id = $1")).
		WithArgs("c1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateVisibility(context.Background(), "c1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentListVotersByReport(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	rows := sqlmock.NewRows([]string{"comment_id", "user_id"}).
		AddRow("c1", "u2").
		AddRow("c1", "u3").
		AddRow("c2", "u1")
	mock.ExpectQuery("SELECT v.comment_id, v.user_id").
		WithArgs("r1").
		WillReturnRows(rows)

	voters, err := repo.ListVotersByReport(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, voters["c1"])
	assert.Equal(t, []string{"u1"}, voters["c2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentAddVoteIgnoresDuplicates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("INSERT INTO comment_helpful_votes (.+) ON CONFLICT \\(comment_id, user_id\\) DO NOTHING").
		WithArgs("c1", "u2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddVote(context.Background(), "c1", "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
