package core

import (
	"math"
	"time"
)

type GoalStatus string

const (
	GoalCompleted  GoalStatus = "Completed"
	GoalOverdue    GoalStatus = "Overdue"
	GoalUrgent     GoalStatus = "Urgent"
	GoalInProgress GoalStatus = "In Progress"
)

// urgentDays is the horizon under which an open goal is urgent.
const urgentDays = 30

// Label is the pt-BR text shown for the status.
func (s GoalStatus) Label() string {
	switch s {
	case GoalCompleted:
		return "Concluída"
	case GoalOverdue:
		return "Vencida"
	case GoalUrgent:
		return "Urgente"
	}
	return "Em Progresso"
}

type GoalProgress struct {
	Progress float64    `json:"progress"`
	DaysLeft int        `json:"daysLeft"`
	Status   GoalStatus `json:"status"`
}

// Evaluate derives progress and status of g at now. Progress is not clamped
// and may exceed 100. Days are counted between calendar dates, taking today
// as now's date in its own location, like Resolve.
func Evaluate(g Goal, now time.Time) GoalProgress {
	var progress float64
	if g.Target.Cents > 0 {
		progress = float64(g.Current.Cents) / float64(g.Target.Cents) * 100
	}

	today := DateOf(now)
	deadline := DateOf(g.Deadline.Time)
	daysLeft := int(math.Ceil(deadline.Sub(today.Time).Hours() / 24))

	status := GoalInProgress
	switch {
	case progress >= 100:
		status = GoalCompleted
	case daysLeft < 0:
		status = GoalOverdue
	case daysLeft <= urgentDays:
		status = GoalUrgent
	}
	return GoalProgress{Progress: progress, DaysLeft: daysLeft, Status: status}
}
