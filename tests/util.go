package testutil

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/notification"
)

// Small but valid documents, recognised by content sniffing.
var (
	PDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	MP4 = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
)

// Clock is a settable clock to hand to the services' SetNowFunc.
type Clock struct {
	Now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{Now: now.UTC()} }

func (c *Clock) Func() core.NowFunc { return func() time.Time { return c.Now } }
func (c *Clock) Advance(d time.Duration) { c.Now = c.Now.Add(d) }
func (c *Clock) Set(t time.Time) { c.Now = t.UTC() }

// NewConfig returns the configuration used by tests: small pages and a 24h window.
func NewConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "DeptPortal",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Host:                      "localhost",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Files: core.FilesConfig{
			Backend:       core.FilesDisk,
			PublicBaseURL: "http://localhost:8000/uploads",
			MaxUploadSize: 1 << 20,
		},
		Listing: core.ListingConfig{
			VisibilityWindow:      24 * time.Hour,
			NotificationsPageSize: 5,
			AssignmentsPageSize:   5,
			MaterialsPageSize:     6,
			LatestNotifications:   3,
		},
		Download: core.DownloadConfig{Timeout: 5 * time.Second},
	}
}

func NewUpload(t *testing.T, filename string, data []byte) *core.Upload {
	up, err := core.NewUpload(filename, bytes.NewReader(data), 0)
	if err != nil {
		t.Fatalf("NewUpload() failed: %v", err)
	}
	return &up
}

func CreateNotification(t *testing.T, repo notification.Repository, id, level string, createdAt time.Time, submittedAt ...time.Time) notification.Notification {
	notif := notification.Notification{
		ID:          id,
		Title:       "Notification " + id,
		Description: "Description of " + id,
		Date:        createdAt.UTC(),
		Level:       level,
	}
	if len(submittedAt) > 0 {
		at := submittedAt[0].UTC()
		notif.Submitted = true
		notif.SubmissionDate = &at
	}
	notif, err := repo.CreateNotification(context.Background(), notif)
	if err != nil {
		t.Fatalf("CreateNotification() failed: %v", err)
	}
	return notif
}

func CreateAssignment(t *testing.T, repo assignment.Repository, id, level, subj string, createdAt time.Time, submittedAt ...time.Time) assignment.Assignment {
	asg := assignment.Assignment{
		ID:          id,
		Title:       "Assignment " + id,
		Description: "Description of " + id,
		Subject:     subj,
		Level:       level,
		Deadline:    createdAt.Add(7 * 24 * time.Hour).UTC(),
		File:        assignment.File{URL: "http://files.test/" + id + ".pdf", Type: core.FileTypePDF, Filename: id + ".pdf"},
		Date:        createdAt.UTC(),
	}
	if len(submittedAt) > 0 {
		at := submittedAt[0].UTC()
		asg.Submitted = true
		asg.SubmissionDate = &at
	}
	asg, err := repo.CreateAssignment(context.Background(), asg)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateMaterial(t *testing.T, repo material.Repository, id, level, subj, fileType, filename string, uploadedAt time.Time) material.Material {
	mat, err := repo.CreateMaterial(context.Background(), material.Material{
		ID:         id,
		Title:      "Material " + id,
		Subject:    subj,
		Level:      level,
		Filename:   filename,
		FileURL:    "http://files.test/" + filename,
		FileType:   fileType,
		UploadDate: uploadedAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMaterial() failed: %v", err)
	}
	return mat
}
