package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/healthgrid/hospital-api/internal/domain/appointment"
)

// setupAppointmentDB opens an in-memory SQLite database with the same
// schema-qualified table and partial unique indexes the Postgres
// migration creates. SQLite resolves "scheduling.appointments" through
// an attached database, so the production table name works unchanged.
func setupAppointmentDB(t *testing.T) *AppointmentRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`ATTACH DATABASE ':memory:' AS scheduling`,
		`CREATE TABLE scheduling.appointments (
			id TEXT PRIMARY KEY,
			created_at DATETIME,
			updated_at DATETIME,
			patient_id TEXT NOT NULL,
			doctor_id TEXT NOT NULL,
			appointment_date DATETIME NOT NULL,
			time_slot INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			symptoms TEXT,
			diagnosis TEXT,
			cancel_reason TEXT,
			cancelled_by TEXT,
			created_by TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX scheduling.uq_appointments_doctor_date_slot
			ON appointments (doctor_id, appointment_date, time_slot)
			WHERE status <> 'cancelled'`,
		`CREATE UNIQUE INDEX scheduling.uq_appointments_patient_doctor_date
			ON appointments (patient_id, doctor_id, appointment_date)
			WHERE status <> 'cancelled'`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return NewAppointmentRepository(db)
}

func testDate() time.Time {
	return appointment.DateOnly(time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))
}

func newTestAppointment(doctorID, patientID uuid.UUID, slot appointment.TimeSlot) *appointment.Appointment {
	return &appointment.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: testDate(),
		TimeSlot:        slot,
		Status:          appointment.StatusPending,
		Symptoms:        "headache",
		CreatedBy:       patientID,
	}
}

func TestAppointmentCreateAndGet(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()

	a := newTestAppointment(uuid.New(), uuid.New(), appointment.SlotMorning1)
	require.NoError(t, repo.Create(ctx, a))
	require.NotEqual(t, uuid.Nil, a.ID)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.PatientID, got.PatientID)
	assert.Equal(t, a.DoctorID, got.DoctorID)
	assert.Equal(t, appointment.SlotMorning1, got.TimeSlot)
	assert.Equal(t, appointment.StatusPending, got.Status)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestAppointmentCreateDuplicateSlot(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1)))

	err := repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1))
	assert.ErrorIs(t, err, appointment.ErrSlotTaken)
}

func TestAppointmentCreateDuplicatePatientDay(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()
	patientID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, patientID, appointment.SlotMorning1)))

	// Same patient, same doctor, same day, different slot still violates
	// the patient-day index.
	err := repo.Create(ctx, newTestAppointment(doctorID, patientID, appointment.SlotAfternoon2))
	assert.ErrorIs(t, err, appointment.ErrSlotTaken)
}

func TestAppointmentCancelledRowFreesIndexes(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	a := newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1)
	require.NoError(t, repo.Create(ctx, a))

	cancelledBy := a.PatientID
	a.Status = appointment.StatusCancelled
	a.CancelReason = "changed plans"
	a.CancelledBy = &cancelledBy
	require.NoError(t, repo.UpdateStatus(ctx, a, appointment.StatusPending))

	// The partial indexes ignore cancelled rows, so the slot is free again.
	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1)))
}

func TestAppointmentUpdateStatusCAS(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()

	a := newTestAppointment(uuid.New(), uuid.New(), appointment.SlotMorning1)
	require.NoError(t, repo.Create(ctx, a))

	a.Status = appointment.StatusConfirmed
	require.NoError(t, repo.UpdateStatus(ctx, a, appointment.StatusPending))

	confirmed, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)

	// Replaying the same pending-based update must fail: the row has moved.
	stale := *a
	stale.Status = appointment.StatusCancelled
	err = repo.UpdateStatus(ctx, &stale, appointment.StatusPending)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, got.Status)
	assert.True(t, got.UpdatedAt.Equal(confirmed.UpdatedAt))

	missing := *a
	missing.ID = uuid.New()
	err = repo.UpdateStatus(ctx, &missing, appointment.StatusConfirmed)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestAppointmentUpdateStatusRecordsDiagnosis(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()

	a := newTestAppointment(uuid.New(), uuid.New(), appointment.SlotMorning2)
	require.NoError(t, repo.Create(ctx, a))

	a.Status = appointment.StatusConfirmed
	require.NoError(t, repo.UpdateStatus(ctx, a, appointment.StatusPending))

	a.Status = appointment.StatusCompleted
	a.Diagnosis = "seasonal allergy"
	require.NoError(t, repo.UpdateStatus(ctx, a, appointment.StatusConfirmed))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, got.Status)
	assert.Equal(t, "seasonal allergy", got.Diagnosis)
}

func TestAppointmentCapacityQueries(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()
	patientID := uuid.New()

	a := newTestAppointment(doctorID, patientID, appointment.SlotMorning1)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning2)))

	count, err := repo.CountActive(ctx, doctorID, testDate())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	occupied, err := repo.SlotOccupied(ctx, doctorID, testDate(), appointment.SlotMorning1)
	require.NoError(t, err)
	assert.True(t, occupied)

	occupied, err = repo.SlotOccupied(ctx, doctorID, testDate(), appointment.SlotAfternoon1)
	require.NoError(t, err)
	assert.False(t, occupied)

	booked, err := repo.HasPatientBooking(ctx, patientID, doctorID, testDate())
	require.NoError(t, err)
	assert.True(t, booked)

	booked, err = repo.HasPatientBooking(ctx, uuid.New(), doctorID, testDate())
	require.NoError(t, err)
	assert.False(t, booked)

	// Cancelling releases the count, the slot, and the patient claim.
	cancelledBy := patientID
	a.Status = appointment.StatusCancelled
	a.CancelledBy = &cancelledBy
	require.NoError(t, repo.UpdateStatus(ctx, a, appointment.StatusPending))

	count, err = repo.CountActive(ctx, doctorID, testDate())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	occupied, err = repo.SlotOccupied(ctx, doctorID, testDate(), appointment.SlotMorning1)
	require.NoError(t, err)
	assert.False(t, occupied)

	booked, err = repo.HasPatientBooking(ctx, patientID, doctorID, testDate())
	require.NoError(t, err)
	assert.False(t, booked)
}

func TestAppointmentListByDoctorDate(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotAfternoon1)))
	require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1)))
	require.NoError(t, repo.Create(ctx, newTestAppointment(uuid.New(), uuid.New(), appointment.SlotMorning1)))

	all, err := repo.ListByDoctorDate(ctx, doctorID, testDate(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, appointment.SlotMorning1, all[0].TimeSlot, "schedule is ordered by slot")
	assert.Equal(t, appointment.SlotAfternoon1, all[1].TimeSlot)

	slot := appointment.SlotAfternoon1
	filtered, err := repo.ListByDoctorDate(ctx, doctorID, testDate(), &slot)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, slot, filtered[0].TimeSlot)
}

func TestAppointmentListPagination(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	slots := []appointment.TimeSlot{
		appointment.SlotMorning1, appointment.SlotMorning2, appointment.SlotMorning3,
		appointment.SlotAfternoon1, appointment.SlotAfternoon2,
	}
	for _, s := range slots {
		require.NoError(t, repo.Create(ctx, newTestAppointment(doctorID, uuid.New(), s)))
	}

	status := appointment.StatusPending
	page, err := repo.List(ctx, &appointment.ListAppointmentsQuery{
		Status:   &status,
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Appointments, 2)

	last, err := repo.List(ctx, &appointment.ListAppointmentsQuery{
		Status:   &status,
		Page:     3,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, last.Appointments, 1)

	missing := appointment.StatusCompleted
	empty, err := repo.List(ctx, &appointment.ListAppointmentsQuery{
		Status:   &missing,
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.TotalCount)
	assert.Empty(t, empty.Appointments)
}

func TestAppointmentRecent(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for i, s := range []appointment.TimeSlot{appointment.SlotMorning1, appointment.SlotMorning2, appointment.SlotMorning3} {
		a := newTestAppointment(doctorID, uuid.New(), s)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, a))
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, appointment.SlotMorning3, recent[0].TimeSlot, "newest first")
	assert.Equal(t, appointment.SlotMorning2, recent[1].TimeSlot)
}

func TestAppointmentCountByStatus(t *testing.T) {
	repo := setupAppointmentDB(t)
	ctx := context.Background()
	doctorID := uuid.New()

	pending := newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning1)
	require.NoError(t, repo.Create(ctx, pending))

	confirmed := newTestAppointment(doctorID, uuid.New(), appointment.SlotMorning2)
	require.NoError(t, repo.Create(ctx, confirmed))
	confirmed.Status = appointment.StatusConfirmed
	require.NoError(t, repo.UpdateStatus(ctx, confirmed, appointment.StatusPending))

	stats, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Confirmed)
	assert.EqualValues(t, 0, stats.Cancelled)
}
