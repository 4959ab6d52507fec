package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountOwnedBy scopes a query to rows owned by an account.
type AccountOwnedBy struct {
	AccountID uuid.UUID
}

func (s AccountOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("account_id = ?", s.AccountID)
}

// ByProjectID scopes documents and messages to one project.
type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}
