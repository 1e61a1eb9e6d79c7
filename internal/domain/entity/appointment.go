package entity

import "time"

// Appointment is a time-bounded visit that must clear its approval chain
// before the gate admits its visitors.
type Appointment struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	PlantID      string `json:"plant_id"`
	HostID       string `json:"host_id"`
	DepartmentID string `json:"department_id,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	RiskClass    string `json:"risk_class"`
	Visitors     []Visitor `json:"visitors"`
	// Validity window for physical entry.
	AppointmentDate time.Time `json:"appointment_date"`
	ValidTill       time.Time `json:"valid_till"`

	ApprovalInstanceID *int64   `json:"approval_instance_id,omitempty"`
	PassType           PassType `json:"pass_type"`
	Active             bool     `json:"active"`

	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasAssets reports whether any visitor declared tracked belongings.
// Asset-based approval levels only join the chain when this is true.
func (a *Appointment) HasAssets() bool {
	for i := range a.Visitors {
		if len(a.Visitors[i].Belongings) > 0 {
			return true
		}
	}
	return false
}

// WithinWindow reports whether t falls inside the appointment's validity
// window, inclusive at both ends.
func (a *Appointment) WithinWindow(t time.Time) bool {
	return !t.Before(a.AppointmentDate) && !t.After(a.ValidTill)
}

// Visitor is one person covered by an appointment.
type Visitor struct {
	ID            int64       `json:"id"`
	AppointmentID int64       `json:"appointment_id"`
	Name          string      `json:"name"`
	IDNumber      string      `json:"id_number,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Belongings    []Belonging `json:"belongings,omitempty"`
}

// Belonging is a tracked asset a visitor brings on site.
type Belonging struct {
	ID          int64  `json:"id"`
	VisitorID   int64  `json:"visitor_id"`
	Description string `json:"description"`
	SerialNo    string `json:"serial_no,omitempty"`
}
