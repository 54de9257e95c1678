package repository

import (
	"context"

	"eldrix/admin/internal/models"
)

type TechUsageRepository struct {
	db DB
}

func NewTechUsageRepository(db DB) *TechUsageRepository {
	return &TechUsageRepository{db: db}
}

func (r *TechUsageRepository) ListByUser(ctx context.Context, userID string) ([]models.TechUsage, error) {
	const query = `
		SELECT id, user_id, device_type, device_name, skill_level, usage_frequency, notes, created_at, updated_at
		FROM tech_usage
		WHERE user_id = $1
		ORDER BY device_type ASC, device_name ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []models.TechUsage
	for rows.Next() {
		var u models.TechUsage
		if err := rows.Scan(
			&u.ID,
			&u.UserID,
			&u.DeviceType,
			&u.DeviceName,
			&u.SkillLevel,
			&u.UsageFrequency,
			&u.Notes,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
