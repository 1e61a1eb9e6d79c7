package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/sqlite"
)

// AppointmentRepository implements port.AppointmentRepository
type AppointmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *sql.DB, logger *zap.Logger) port.AppointmentRepository {
	return &AppointmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the appointment with its visitors and belongings
func (r *AppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		INSERT INTO appointments (
			code, plant_id, host_id, department_id, purpose, risk_class,
			appointment_date, valid_till, pass_type, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		appointment.Code,
		appointment.PlantID,
		appointment.HostID,
		nullString(appointment.DepartmentID),
		appointment.Purpose,
		appointment.RiskClass,
		appointment.AppointmentDate,
		appointment.ValidTill,
		appointment.PassType.String(),
		appointment.Active,
	)
	if err != nil {
		r.logger.Error("Failed to create appointment", zap.Error(err))
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if appointment.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	for i := range appointment.Visitors {
		visitor := &appointment.Visitors[i]
		result, err := ex.ExecContext(ctx, `
			INSERT INTO visitors (appointment_id, name, id_number, phone)
			VALUES (?, ?, ?, ?)
		`, appointment.ID, visitor.Name, visitor.IDNumber, visitor.Phone)
		if err != nil {
			return fmt.Errorf("failed to create visitor: %w", err)
		}
		if visitor.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		visitor.AppointmentID = appointment.ID

		for j := range visitor.Belongings {
			belonging := &visitor.Belongings[j]
			result, err := ex.ExecContext(ctx, `
				INSERT INTO belongings (visitor_id, description, serial_no)
				VALUES (?, ?, ?)
			`, visitor.ID, belonging.Description, belonging.SerialNo)
			if err != nil {
				return fmt.Errorf("failed to create belonging: %w", err)
			}
			if belonging.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			belonging.VisitorID = visitor.ID
		}
	}

	return nil
}

// GetByID retrieves an appointment with visitors and belongings
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	var appointment entity.Appointment
	var departmentID sql.NullString
	var instanceID sql.NullInt64
	var passType string
	var checkedInAt, checkedOutAt sql.NullTime

	err := ex.QueryRowContext(ctx, `
		SELECT id, code, plant_id, host_id, department_id, purpose, risk_class,
			appointment_date, valid_till, approval_instance_id, pass_type,
			active, checked_in_at, checked_out_at, created_at, updated_at
		FROM appointments
		WHERE id = ?
	`, id).Scan(
		&appointment.ID,
		&appointment.Code,
		&appointment.PlantID,
		&appointment.HostID,
		&departmentID,
		&appointment.Purpose,
		&appointment.RiskClass,
		&appointment.AppointmentDate,
		&appointment.ValidTill,
		&instanceID,
		&passType,
		&appointment.Active,
		&checkedInAt,
		&checkedOutAt,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get appointment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	appointment.DepartmentID = departmentID.String
	appointment.PassType = entity.PassType(passType)
	if instanceID.Valid {
		appointment.ApprovalInstanceID = &instanceID.Int64
	}
	if checkedInAt.Valid {
		appointment.CheckedInAt = &checkedInAt.Time
	}
	if checkedOutAt.Valid {
		appointment.CheckedOutAt = &checkedOutAt.Time
	}

	if appointment.Visitors, err = r.visitorsFor(ctx, appointment.ID); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) visitorsFor(ctx context.Context, appointmentID int64) ([]entity.Visitor, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	rows, err := ex.QueryContext(ctx, `
		SELECT id, appointment_id, name, id_number, phone
		FROM visitors
		WHERE appointment_id = ?
		ORDER BY id ASC
	`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	var visitors []entity.Visitor
	for rows.Next() {
		var v entity.Visitor
		if err := rows.Scan(&v.ID, &v.AppointmentID, &v.Name, &v.IDNumber, &v.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range visitors {
		if visitors[i].Belongings, err = r.belongingsFor(ctx, visitors[i].ID); err != nil {
			return nil, err
		}
	}
	return visitors, nil
}

func (r *AppointmentRepository) belongingsFor(ctx context.Context, visitorID int64) ([]entity.Belonging, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	rows, err := ex.QueryContext(ctx, `
		SELECT id, visitor_id, description, serial_no
		FROM belongings
		WHERE visitor_id = ?
		ORDER BY id ASC
	`, visitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list belongings: %w", err)
	}
	defer rows.Close()

	var belongings []entity.Belonging
	for rows.Next() {
		var b entity.Belonging
		if err := rows.Scan(&b.ID, &b.VisitorID, &b.Description, &b.SerialNo); err != nil {
			return nil, fmt.Errorf("failed to scan belonging: %w", err)
		}
		belongings = append(belongings, b)
	}
	return belongings, rows.Err()
}

// SetApprovalInstance links the appointment to its approval instance
func (r *AppointmentRepository) SetApprovalInstance(ctx context.Context, id, instanceID int64) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		UPDATE appointments SET approval_instance_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, instanceID, id)
	if err != nil {
		return fmt.Errorf("failed to link approval instance: %w", err)
	}
	return nil
}

// UpdatePassType stores the derived pass type
func (r *AppointmentRepository) UpdatePassType(ctx context.Context, id int64, passType entity.PassType) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		UPDATE appointments SET pass_type = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, passType.String(), id)
	if err != nil {
		r.logger.Error("Failed to update pass type", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update pass type: %w", err)
	}
	return nil
}

// MarkCheckedIn records the check-in time iff none is set yet. The WHERE
// clause is the atomicity guarantee: two concurrent calls see exactly one
// affected row between them.
func (r *AppointmentRepository) MarkCheckedIn(ctx context.Context, id int64, t time.Time) (bool, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		UPDATE appointments
		SET checked_in_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND checked_in_at IS NULL
	`, t, id)
	if err != nil {
		r.logger.Error("Failed to mark checked in", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to mark checked in: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkCheckedOut records the check-out time iff the appointment is checked
// in and not yet checked out.
func (r *AppointmentRepository) MarkCheckedOut(ctx context.Context, id int64, t time.Time) (bool, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		UPDATE appointments
		SET checked_out_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND checked_in_at IS NOT NULL AND checked_out_at IS NULL
	`, t, id)
	if err != nil {
		r.logger.Error("Failed to mark checked out", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to mark checked out: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetActive flips the activity flag
func (r *AppointmentRepository) SetActive(ctx context.Context, id int64, active bool) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		UPDATE appointments SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set active: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.AppointmentRepository = (*AppointmentRepository)(nil)
