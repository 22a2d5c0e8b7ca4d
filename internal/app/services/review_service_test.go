package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

func TestUpdateApplication_NotifiesOnStatusChange(t *testing.T) {
	f := newWizardFixture(false)
	f.completePersonal(t)
	app := f.completeEducation(t)
	ctx := context.Background()
	svc := NewReviewService(f.students, f.apps, f.notifier, zerolog.Nop())

	notes := "  Missing transcript  "
	summary, err := svc.UpdateApplication(ctx, app.ID, &dto.ReviewRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Missing transcript", *summary.Notes)
	assert.Empty(t, f.notifier.changed, "notes alone do not notify")

	approved := f.apps.statuses[models.StatusApproved]
	summary, err = svc.UpdateApplication(ctx, app.ID, &dto.ReviewRequest{StatusID: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, *summary.StatusCode)
	require.Len(t, f.notifier.changed, 1)
	assert.Equal(t, app.ID, f.notifier.changed[0].ID)

	_, err = svc.UpdateApplication(ctx, app.ID, &dto.ReviewRequest{StatusID: &approved})
	require.NoError(t, err)
	assert.Len(t, f.notifier.changed, 1, "same status is not a change")
}

func TestUpdateApplication_Errors(t *testing.T) {
	f := newWizardFixture(false)
	svc := NewReviewService(f.students, f.apps, f.notifier, zerolog.Nop())

	_, err := svc.UpdateApplication(context.Background(), uuid.New(), &dto.ReviewRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	notes := "x"
	_, err = svc.UpdateApplication(context.Background(), uuid.New(), &dto.ReviewRequest{Notes: &notes})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
