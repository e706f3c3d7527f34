package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/schedule"
)

// Status is the lifecycle state of an appointment. Completed and Cancelled
// are both terminal.
type Status string

const (
	StatusBooked    Status = "Booked"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Appointment is one booked slot in a doctor's weekly queue. SerialNo is
// the capacity-bounded ticket number: unique among non-Cancelled rows for
// the same (doctor, weekday) and reusable once a booking is cancelled.
type Appointment struct {
	ID        uuid.UUID        `json:"appointment_id"`
	PatientID uuid.UUID        `json:"patient_id"`
	DoctorID  uuid.UUID        `json:"doctor_id"`
	Weekday   schedule.Weekday `json:"day"`
	SerialNo  int              `json:"serial_no"`
	Date      time.Time        `json:"appointment_date"`
	Status    Status           `json:"status"`
}

// PatientAppointment is an appointment enriched for the patient-facing
// list: doctor context plus, for Booked rows, the live queue estimate.
type PatientAppointment struct {
	Appointment
	DoctorName   string    `json:"doctor_name"`
	HospitalName string    `json:"hospital_name,omitempty"`
	Specialty    string    `json:"specialty,omitempty"`
	Estimate     *Estimate `json:"estimate,omitempty"`
}

// DoctorAppointment is an appointment enriched for the doctor's per-day
// planning queue.
type DoctorAppointment struct {
	Appointment
	PatientName   string `json:"patient_name"`
	EstimatedTime string `json:"estimated_time"`
}

// DaySchedule groups a doctor's appointments under one weekday of their
// schedule, in serial order.
type DaySchedule struct {
	Day           schedule.Weekday    `json:"day"`
	MaxPatients   int                 `json:"max_patients"`
	StartTime     string              `json:"start_time"`
	AvgPerPatient int                 `json:"avg_time_per_patient"`
	Appointments  []DoctorAppointment `json:"appointments"`
}

// DayAvailability reports remaining capacity for one weekday of a doctor's
// schedule.
type DayAvailability struct {
	Day            schedule.Weekday `json:"day"`
	SlotsAvailable int              `json:"slots_available"`
	MaxPatients    int              `json:"max_patients"`
}
