package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/lifecycle"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// grantedAppointment is an approved appointment inside its validity window.
func grantedAppointment() *entity.Appointment {
	return &entity.Appointment{
		ID:              1,
		Code:            "A-1",
		PlantID:         "P001",
		HostID:          "U1",
		RiskClass:       entity.RiskClassGeneral,
		AppointmentDate: testNow.Add(-time.Hour),
		ValidTill:       testNow.Add(8 * time.Hour),
		PassType:        entity.PassYellow,
		Active:          true,
	}
}

func newAppointmentFixture(t *testing.T, appointment *entity.Appointment) (AppointmentService, *fakeAppointmentRepo) {
	t.Helper()

	repo := &fakeAppointmentRepo{appointment: appointment}
	events := dispatcher.New(dispatcher.WithLogger(nopLogger{}))
	t.Cleanup(func() { events.Close() })

	svc := NewAppointmentService(repo, events, nopLogger{})
	svc.(*appointmentServiceImpl).now = func() time.Time { return testNow }
	return svc, repo
}

func TestAppointmentService_CheckIn(t *testing.T) {
	svc, repo := newAppointmentFixture(t, grantedAppointment())

	appointment, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, appointment.CheckedInAt)
	assert.Equal(t, testNow, *appointment.CheckedInAt)
	assert.Equal(t, testNow, *repo.appointment.CheckedInAt)
}

func TestAppointmentService_CheckIn_Guards(t *testing.T) {
	checkedIn := testNow.Add(-time.Hour)
	checkedOut := testNow.Add(-30 * time.Minute)

	tests := []struct {
		name    string
		mutate  func(*entity.Appointment)
		wantErr error
	}{
		{
			name:    "pass not granted",
			mutate:  func(a *entity.Appointment) { a.PassType = entity.PassPending },
			wantErr: lifecycle.ErrApprovalNotGranted,
		},
		{
			name:    "pass rejected",
			mutate:  func(a *entity.Appointment) { a.PassType = entity.PassReject },
			wantErr: lifecycle.ErrApprovalNotGranted,
		},
		{
			name:    "already checked in",
			mutate:  func(a *entity.Appointment) { a.CheckedInAt = &checkedIn },
			wantErr: lifecycle.ErrAlreadyCheckedIn,
		},
		{
			name: "already checked out",
			mutate: func(a *entity.Appointment) {
				a.CheckedInAt = &checkedIn
				a.CheckedOutAt = &checkedOut
			},
			wantErr: lifecycle.ErrAlreadyCheckedIn,
		},
		{
			name:    "deactivated",
			mutate:  func(a *entity.Appointment) { a.Active = false },
			wantErr: lifecycle.ErrInactiveAppointment,
		},
		{
			name: "window expired",
			mutate: func(a *entity.Appointment) {
				a.AppointmentDate = testNow.Add(-48 * time.Hour)
				a.ValidTill = testNow.Add(-24 * time.Hour)
			},
			wantErr: lifecycle.ErrInactiveAppointment,
		},
		{
			name: "window not started",
			mutate: func(a *entity.Appointment) {
				a.AppointmentDate = testNow.Add(time.Hour)
				a.ValidTill = testNow.Add(8 * time.Hour)
			},
			wantErr: lifecycle.ErrInactiveAppointment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointment := grantedAppointment()
			tt.mutate(appointment)
			svc, _ := newAppointmentFixture(t, appointment)

			_, err := svc.CheckIn(context.Background(), 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppointmentService_CheckIn_LostRace(t *testing.T) {
	// The appointment looks scheduled at load time but another terminal's
	// write lands first; the conditional update reports the duplicate.
	svc, repo := newAppointmentFixture(t, grantedAppointment())
	repo.markCheckedInFunc = func(ctx context.Context, id int64, at time.Time) (bool, error) {
		return false, nil
	}

	_, err := svc.CheckIn(context.Background(), 1)
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyCheckedIn)
}

func TestAppointmentService_CheckIn_NotFound(t *testing.T) {
	svc, _ := newAppointmentFixture(t, grantedAppointment())

	_, err := svc.CheckIn(context.Background(), 99)
	assert.ErrorIs(t, err, lifecycle.ErrAppointmentNotFound)
}

func TestAppointmentService_CheckOut(t *testing.T) {
	checkedIn := testNow.Add(-time.Hour)
	appointment := grantedAppointment()
	appointment.CheckedInAt = &checkedIn

	svc, repo := newAppointmentFixture(t, appointment)

	got, err := svc.CheckOut(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, got.CheckedOutAt)
	assert.Equal(t, testNow, *got.CheckedOutAt)
	assert.Equal(t, testNow, *repo.appointment.CheckedOutAt)
}

func TestAppointmentService_CheckOut_Guards(t *testing.T) {
	checkedIn := testNow.Add(-time.Hour)
	checkedOut := testNow.Add(-30 * time.Minute)

	tests := []struct {
		name    string
		mutate  func(*entity.Appointment)
		wantErr error
	}{
		{
			name:    "never checked in",
			mutate:  func(a *entity.Appointment) {},
			wantErr: lifecycle.ErrNotCheckedIn,
		},
		{
			name: "already checked out",
			mutate: func(a *entity.Appointment) {
				a.CheckedInAt = &checkedIn
				a.CheckedOutAt = &checkedOut
			},
			wantErr: lifecycle.ErrAlreadyCheckedOut,
		},
		{
			name: "deactivated while on site",
			mutate: func(a *entity.Appointment) {
				a.CheckedInAt = &checkedIn
				a.Active = false
			},
			wantErr: lifecycle.ErrInactiveAppointment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointment := grantedAppointment()
			tt.mutate(appointment)
			svc, _ := newAppointmentFixture(t, appointment)

			_, err := svc.CheckOut(context.Background(), 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppointmentService_Deactivate(t *testing.T) {
	svc, repo := newAppointmentFixture(t, grantedAppointment())

	require.NoError(t, svc.Deactivate(context.Background(), 1))
	assert.False(t, repo.appointment.Active)
}

func TestAppointmentService_Deactivate_AfterCheckOut(t *testing.T) {
	checkedIn := testNow.Add(-time.Hour)
	checkedOut := testNow.Add(-30 * time.Minute)
	appointment := grantedAppointment()
	appointment.CheckedInAt = &checkedIn
	appointment.CheckedOutAt = &checkedOut

	svc, _ := newAppointmentFixture(t, appointment)

	err := svc.Deactivate(context.Background(), 1)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}
