package appointments

import (
	"github.com/mediplus/clinic-platform/internal/schedule"
)

// Estimate is the live queue view for one booked appointment. Minutes are
// since midnight and may exceed the end of the day for late-running
// schedules; Clock renders them as-is ("24:10") without date rollover.
type Estimate struct {
	PatientsAhead    int    `json:"patients_ahead"`
	QueuePosition    int    `json:"queue_position"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	EstimatedTime    string `json:"estimated_time"`
}

// EstimateQueue derives queue position and estimated consultation time
// from the number of completed predecessors on the appointment's date.
//
// Doctors see patients in serial order, and only a Completed predecessor
// shrinks the wait: a patient stuck behind a no-show keeps their position
// until that serial completes.
func EstimateQueue(serialNo, completedAhead int, entry *schedule.Entry) Estimate {
	ahead := serialNo - 1 - completedAhead
	if ahead < 0 {
		ahead = 0
	}
	minutes := entry.StartMinutes + ahead*entry.AvgPerPatient
	return Estimate{
		PatientsAhead:    ahead,
		QueuePosition:    ahead + 1,
		EstimatedMinutes: minutes,
		EstimatedTime:    schedule.FormatClock(minutes),
	}
}

// PlanningMinutes is the doctor-facing estimate for a serial: start time
// plus a full slot per predecessor, ignoring completion state. The grouped
// daily queue uses it for planning, not live patient wait.
func PlanningMinutes(entry *schedule.Entry, serialNo int) int {
	return entry.StartMinutes + (serialNo-1)*entry.AvgPerPatient
}
