package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/models"
)

func CreateBehavior(userID uint, name, description string) (*models.BehaviorDefinition, error) {
	if name == "" {
		return nil, errors.New("behavior name required")
	}

	def := models.BehaviorDefinition{
		UserID:      userID,
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := config.DB.Create(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func ListBehaviors(userID uint, activeOnly bool) ([]models.BehaviorDefinition, error) {
	q := config.DB.Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var defs []models.BehaviorDefinition
	err := q.Order("created_at asc").Find(&defs).Error
	return defs, err
}

func SetBehaviorActive(userID, behaviorID uint, active bool) error {
	result := config.DB.Model(&models.BehaviorDefinition{}).
		Where("id = ? AND user_id = ?", behaviorID, userID).
		Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertBehaviorLog records completion for one behavior on one day, unique
// per (user, behavior, local day).
func UpsertBehaviorLog(userID, behaviorID uint, date time.Time, completed bool) (*models.BehaviorLog, error) {
	var def models.BehaviorDefinition
	if err := config.DB.Where("id = ? AND user_id = ?", behaviorID, userID).First(&def).Error; err != nil {
		return nil, err
	}

	start := dayStartLocal(date)
	log := models.BehaviorLog{
		UserID:     userID,
		BehaviorID: behaviorID,
		Date:       start,
		Completed:  completed,
	}

	err := config.DB.
		Where("user_id = ? AND behavior_id = ? AND date = ?", userID, behaviorID, start).
		Assign(map[string]any{"completed": completed}).
		FirstOrCreate(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// BehaviorDay is one behavior's state for a given day.
type BehaviorDay struct {
	Behavior  models.BehaviorDefinition `json:"behavior"`
	Completed bool                      `json:"completed"`
}

// GetBehaviorDay returns every active behavior with its completion state for
// the given day; behaviors without a log row show as not completed.
func GetBehaviorDay(userID uint, date time.Time) ([]BehaviorDay, error) {
	defs, err := ListBehaviors(userID, true)
	if err != nil {
		return nil, err
	}

	start := dayStartLocal(date)
	var logs []models.BehaviorLog
	err = config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	done := make(map[uint]bool, len(logs))
	for _, l := range logs {
		done[l.BehaviorID] = l.Completed
	}

	day := make([]BehaviorDay, 0, len(defs))
	for _, d := range defs {
		day = append(day, BehaviorDay{Behavior: d, Completed: done[d.ID]})
	}
	return day, nil
}

// BehaviorStats summarizes one behavior over a window.
type BehaviorStats struct {
	BehaviorID    uint    `json:"behaviorId"`
	Name          string  `json:"name"`
	DaysCompleted int     `json:"daysCompleted"`
	WindowDays    int     `json:"windowDays"`
	Rate          float64 `json:"rate"`
	CurrentStreak int     `json:"currentStreak"`
}

// GetBehaviorStats computes completion rate and the current streak (counting
// back from today) for each active behavior over the trailing window.
func GetBehaviorStats(userID uint, windowDays int) ([]BehaviorStats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	defs, err := ListBehaviors(userID, true)
	if err != nil {
		return nil, err
	}

	today := dayStartLocal(time.Now())
	winStart := today.AddDate(0, 0, -(windowDays - 1))

	var logs []models.BehaviorLog
	err = config.DB.
		Where("user_id = ? AND date >= ? AND completed = ?", userID, winStart, true).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	completedDays := make(map[uint]map[string]bool)
	for _, l := range logs {
		if completedDays[l.BehaviorID] == nil {
			completedDays[l.BehaviorID] = make(map[string]bool)
		}
		completedDays[l.BehaviorID][l.Date.Format("2006-01-02")] = true
	}

	stats := make([]BehaviorStats, 0, len(defs))
	for _, d := range defs {
		days := completedDays[d.ID]

		streak := 0
		for day := today; ; day = day.AddDate(0, 0, -1) {
			if !days[day.Format("2006-01-02")] {
				// Missing today doesn't break a streak that ended yesterday.
				if day.Equal(today) {
					continue
				}
				break
			}
			streak++
		}

		stats = append(stats, BehaviorStats{
			BehaviorID:    d.ID,
			Name:          d.Name,
			DaysCompleted: len(days),
			WindowDays:    windowDays,
			Rate:          float64(len(days)) / float64(windowDays),
			CurrentStreak: streak,
		})
	}
	return stats, nil
}
