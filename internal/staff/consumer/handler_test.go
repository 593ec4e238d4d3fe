package consumer

import (
	"context"
	"errors"
	"io"
	"salonbook/internal/staff/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStaffService struct {
	service.StaffService
	applied []service.Event
	err     error
}

func (f *fakeStaffService) Apply(_ context.Context, ev service.Event) error {
	f.applied = append(f.applied, ev)
	return f.err
}

func newHandler(svc service.StaffService) *StaffEventHandler {
	return NewStaffEventHandler(svc, logger.New(logger.Config{Level: "error", Output: io.Discard}))
}

func TestHandle_FillsFromEnvelope(t *testing.T) {
	svc := &fakeStaffService{}
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	msg := kafka.Message{
		Key:       "s1",
		Value:     []byte(`{}`),
		Headers:   map[string]string{kafka.HeaderEventType: "staff.deleted"},
		Timestamp: ts,
	}
	require.NoError(t, newHandler(svc).Handle(context.Background(), msg))

	require.Len(t, svc.applied, 1)
	assert.Equal(t, service.EventDeleted, svc.applied[0].Type)
	assert.Equal(t, "s1", svc.applied[0].StaffID)
	assert.Equal(t, ts, svc.applied[0].OccurredAt)
}

func TestHandle_DecodesSnapshot(t *testing.T) {
	svc := &fakeStaffService{}
	msg, err := kafka.NewMessage().
		WithKey("s1").
		WithValue(service.Event{
			Type:    service.EventUpserted,
			StaffID: "s1",
			Staff: &model.Staff{
				ID: "s1",
				WeeklySchedule: map[model.Weekday]model.WorkDay{
					model.Monday: {IsWorking: true, StartTime: model.MustParseTimeOfDay("09:00"), EndTime: model.MustParseTimeOfDay("17:00")},
				},
			},
		}).
		Build()
	require.NoError(t, err)

	require.NoError(t, newHandler(svc).Handle(context.Background(), msg))
	require.Len(t, svc.applied, 1)
	require.NotNil(t, svc.applied[0].Staff)
	assert.Equal(t, model.MustParseTimeOfDay("17:00"), svc.applied[0].Staff.WeeklySchedule[model.Monday].EndTime)
}

func TestHandle_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want kafka.ErrorType
	}{
		{"validation is permanent", apperrors.Validation("bad", nil), kafka.ErrorTypePermanent},
		{"internal is transient", apperrors.Internal("db", errors.New("timeout")), kafka.ErrorTypeTransient},
		{"plain error is transient", errors.New("boom"), kafka.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeStaffService{err: tt.err}
			err := newHandler(svc).Handle(context.Background(), kafka.Message{Key: "s1", Value: []byte(`{"type":"staff.deleted"}`)})
			require.Error(t, err)
			assert.Equal(t, tt.want, kafka.ClassifyError(err))
		})
	}
}

func TestHandle_UndecodableIsPermanent(t *testing.T) {
	svc := &fakeStaffService{}
	err := newHandler(svc).Handle(context.Background(), kafka.Message{Key: "s1", Value: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	assert.Empty(t, svc.applied)
}
