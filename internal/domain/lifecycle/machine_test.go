package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatewise/gatepass/internal/domain/entity"
)

func TestAppointmentMachine_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		initial   State
		trigger   Trigger
		wantState State
		wantErr   error
	}{
		{"check in from scheduled", StateScheduled, TriggerCheckIn, StateCheckedIn, nil},
		{"deactivate from scheduled", StateScheduled, TriggerDeactivate, StateInactive, nil},
		{"check out from checked in", StateCheckedIn, TriggerCheckOut, StateCheckedOut, nil},
		{"deactivate from checked in", StateCheckedIn, TriggerDeactivate, StateInactive, nil},
		{"check out from scheduled", StateScheduled, TriggerCheckOut, "", ErrInvalidTransition},
		{"check in from checked in", StateCheckedIn, TriggerCheckIn, "", ErrInvalidTransition},
		{"check in from checked out", StateCheckedOut, TriggerCheckIn, "", ErrInvalidTransition},
		{"check out from checked out", StateCheckedOut, TriggerCheckOut, "", ErrInvalidTransition},
		{"check in from inactive", StateInactive, TriggerCheckIn, "", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAppointmentMachine(tt.initial)
			err := m.Fire(context.Background(), tt.trigger)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fire() error = %v, want %v", err, tt.wantErr)
				}
				if m.State() != tt.initial {
					t.Errorf("state changed to %s after failed fire", m.State())
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire() unexpected error: %v", err)
			}
			if m.State() != tt.wantState {
				t.Errorf("State() = %s, want %s", m.State(), tt.wantState)
			}
		})
	}
}

func TestAppointmentMachine_CanFire(t *testing.T) {
	m := NewAppointmentMachine(StateScheduled)
	if !m.CanFire(TriggerCheckIn) {
		t.Error("CanFire(CheckIn) = false from SCHEDULED")
	}
	if m.CanFire(TriggerCheckOut) {
		t.Error("CanFire(CheckOut) = true from SCHEDULED")
	}

	terminal := NewAppointmentMachine(StateCheckedOut)
	for _, trigger := range []Trigger{TriggerCheckIn, TriggerCheckOut, TriggerDeactivate} {
		if terminal.CanFire(trigger) {
			t.Errorf("CanFire(%s) = true from CHECKED_OUT", trigger)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	if StateScheduled.IsTerminal() || StateCheckedIn.IsTerminal() {
		t.Error("non-terminal state reported terminal")
	}
	if !StateCheckedOut.IsTerminal() || !StateInactive.IsTerminal() {
		t.Error("terminal state reported non-terminal")
	}
}

func TestStateOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	window := func(a *entity.Appointment) *entity.Appointment {
		a.AppointmentDate = now.Add(-time.Hour)
		a.ValidTill = now.Add(time.Hour)
		return a
	}
	checkedIn := now.Add(-30 * time.Minute)
	checkedOut := now.Add(-10 * time.Minute)

	tests := []struct {
		name        string
		appointment *entity.Appointment
		want        State
	}{
		{
			name:        "active within window",
			appointment: window(&entity.Appointment{Active: true}),
			want:        StateScheduled,
		},
		{
			name:        "checked in",
			appointment: window(&entity.Appointment{Active: true, CheckedInAt: &checkedIn}),
			want:        StateCheckedIn,
		},
		{
			name:        "checked out",
			appointment: window(&entity.Appointment{Active: true, CheckedInAt: &checkedIn, CheckedOutAt: &checkedOut}),
			want:        StateCheckedOut,
		},
		{
			name:        "deactivated",
			appointment: window(&entity.Appointment{Active: false}),
			want:        StateInactive,
		},
		{
			name: "window expired",
			appointment: &entity.Appointment{
				Active:          true,
				AppointmentDate: now.Add(-3 * time.Hour),
				ValidTill:       now.Add(-time.Hour),
			},
			want: StateInactive,
		},
		{
			name: "checked-in mark wins over expired window",
			appointment: &entity.Appointment{
				Active:          true,
				AppointmentDate: now.Add(-3 * time.Hour),
				ValidTill:       now.Add(-time.Hour),
				CheckedInAt:     &checkedIn,
			},
			want: StateCheckedIn,
		},
		{
			name:        "window boundaries inclusive",
			appointment: &entity.Appointment{Active: true, AppointmentDate: now, ValidTill: now},
			want:        StateScheduled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.appointment, now); got != tt.want {
				t.Errorf("StateOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
