package repository

import (
	"fmt"
	"time"

	"github.com/herelius/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// RecordAudit appends a log entry for an action performed by member. Must run
// in the same transaction as the mutation it describes, so the entry rolls
// back with it.
func RecordAudit(tx *gorm.DB, member *models.ProjectMember, body string) error {
	id, err := GenerateID(tx, models.Audit{}.TableName(), AuditIDLength)
	if err != nil {
		return err
	}

	audit := models.Audit{
		ID:        id,
		Auditor:   member.ID,
		ProjectID: member.ProjectID,
		Body:      body,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("failed to record audit: %w", err)
	}
	return nil
}

// ListAudits returns a page of a project's audit log, newest first.
func ListAudits(db *gorm.DB, projectID string, offset, limit int) ([]models.Audit, int64, error) {
	var total int64
	query := db.Model(&models.Audit{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audits: %w", err)
	}

	var audits []models.Audit
	err := query.
		Order("timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audits: %w", err)
	}
	return audits, total, nil
}
