package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vpcrm/models"
	"vpcrm/utils"
)

// FollowUpWorker mails telecallers about follow-ups falling due today.
// Each due call task is reminded at most once (ReminderSentAt stamp).
type FollowUpWorker struct {
	DB       *gorm.DB
	Mailer   *utils.Mailer
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewFollowUpWorker(db *gorm.DB, mailer *utils.Mailer, logger *logrus.Logger, interval time.Duration) *FollowUpWorker {
	return &FollowUpWorker{
		DB:       db,
		Mailer:   mailer,
		Logger:   logger,
		Interval: interval,
	}
}

func (fw *FollowUpWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	fw.Logger.Info("Follow-up worker started")

	ticker := time.NewTicker(fw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.Logger.Info("Follow-up worker shutting down...")
			return
		case <-ticker.C:
			fw.processDueFollowUps()
		}
	}
}

func (fw *FollowUpWorker) processDueFollowUps() {
	if fw.Mailer == nil {
		fw.Logger.Debug("SMTP not configured, skipping reminder scan")
		return
	}

	now := time.Now()
	dayStart := utils.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var tasks []models.CallTask
	err := fw.DB.
		Where("next_follow_up_date >= ? AND next_follow_up_date < ? AND reminder_sent_at IS NULL", dayStart, dayEnd).
		Find(&tasks).Error
	if err != nil {
		fw.Logger.WithError(err).Error("Failed to fetch due follow-ups")
		return
	}

	for _, task := range tasks {
		if err := fw.remind(task, now); err != nil {
			fw.Logger.WithError(err).WithFields(logrus.Fields{
				"call_task_id": task.ID,
				"suspect_id":   task.SuspectID,
			}).Error("Failed to send follow-up reminder")
		}
	}
}

func (fw *FollowUpWorker) remind(task models.CallTask, now time.Time) error {
	var suspect models.Suspect
	if err := fw.DB.Preload("AssignedTo").First(&suspect, task.SuspectID).Error; err != nil {
		return err
	}
	if suspect.AssignedTo == nil || suspect.AssignedTo.Email == "" {
		// Unassigned leads have nobody to remind; skip without stamping
		// so the reminder fires once the lead is assigned.
		fw.Logger.WithField("suspect_id", suspect.ID).Debug("No assignee for due follow-up")
		return nil
	}

	data := utils.ReminderData{
		EmployeeName: suspect.AssignedTo.Name,
		GroupName:    suspect.PersonalDetails.GroupName,
		MobileNo:     suspect.PersonalDetails.MobileNo,
		LastStatus:   task.TaskStatus,
		FollowUpDate: task.NextFollowUpDate.Format("2006-01-02"),
		FollowUpTime: task.NextFollowUpTime,
	}
	if err := fw.Mailer.SendFollowUpReminder(suspect.AssignedTo.Email, data); err != nil {
		return err
	}

	if err := fw.DB.Model(&task).Update("reminder_sent_at", now).Error; err != nil {
		return err
	}

	fw.Logger.WithFields(logrus.Fields{
		"suspect_id":  suspect.ID,
		"employee_id": suspect.AssignedTo.ID,
	}).Info("Follow-up reminder sent")
	return nil
}
