package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	admin    auth.Identity
	alice    auth.Identity
	bob      auth.Identity
	projects *ProjectService
	comments *CommentService
	invoices *InvoiceService
	users    *UserService
}

// newFixture seeds one admin and two clients. Hashes are placeholders;
// these tests never verify passwords.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	f := &fixture{
		db:       db,
		projects: NewProjectService(db),
		comments: NewCommentService(db),
		invoices: NewInvoiceService(db),
		users:    NewUserService(db),
	}
	f.admin = seedUser(t, db, "admin", models.RoleAdmin)
	f.alice = seedUser(t, db, "alice", models.RoleClient)
	f.bob = seedUser(t, db, "bob", models.RoleClient)
	return f
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) auth.Identity {
	t.Helper()
	user := models.User{ID: uuid.New(), Username: username, Password: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed %s: %v", username, err)
	}
	return auth.Identity{ID: user.ID, Username: username, Role: role}
}

func (f *fixture) newProject(t *testing.T, owner auth.Identity) *models.Project {
	t.Helper()
	project, err := f.projects.CreateProject(context.Background(), f.admin, CreateProjectInput{
		UserID:  owner.ID,
		Service: models.ServiceBrand,
		Colors:  []string{"#d1fa1a", "#111111"},
		Items:   []string{"Logo", "Business cards"},
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return project
}

func (f *fixture) count(t *testing.T, model interface{}, projectID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func (f *fixture) history(t *testing.T, projectID uuid.UUID) []models.ProjectStatusHistory {
	t.Helper()
	var rows []models.ProjectStatusHistory
	if err := f.db.Where("project_id = ?", projectID).Order("sequence ASC").Find(&rows).Error; err != nil {
		t.Fatalf("history query failed: %v", err)
	}
	return rows
}

func (f *fixture) reload(t *testing.T, projectID uuid.UUID) models.Project {
	t.Helper()
	var p models.Project
	if err := f.db.First(&p, "id = ?", projectID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	return p
}
