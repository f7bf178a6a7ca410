package seed

import (
	"net/url"
	"testing"
	"time"

	"ummahtube/internal/models"
)

func TestBuildVideo_TimestampsAndFormats(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 30}
	f := NewFactory(nil, opts)
	user := &models.User{ID: 1}

	v := f.BuildVideo(user, models.CategoryQuran)
	if v.VideoURL == "" {
		t.Fatalf("expected video url to be set")
	}
	if _, err := url.ParseRequestURI(v.VideoURL); err != nil {
		t.Fatalf("invalid video url: %v", err)
	}
	if v.Status != models.VideoStatusReady {
		t.Fatalf("expected seeded videos to be ready, got %s", v.Status)
	}
	if v.Category != models.CategoryQuran {
		t.Fatalf("unexpected category: %s", v.Category)
	}

	// timestamp should be within MaxDays
	if time.Since(v.CreatedAt) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
		t.Fatalf("created_at too old: %v", v.CreatedAt)
	}
}

func TestBuildVideo_Overrides(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true})
	user := &models.User{ID: 7}

	v := f.BuildVideo(user, models.CategoryHadith, func(v *models.Video) {
		v.Title = "Forty Hadith, part 1"
		v.Status = models.VideoStatusQueued
	})
	if v.Title != "Forty Hadith, part 1" {
		t.Fatalf("override not applied: %q", v.Title)
	}
	if v.Status != models.VideoStatusQueued {
		t.Fatalf("override not applied to status: %s", v.Status)
	}
	if v.UserID != 7 {
		t.Fatalf("unexpected user id: %d", v.UserID)
	}
}

func TestCreateUser_DryRunAssignsSyntheticID(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true})

	u1, err := f.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u2, err := f.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if u1.ID == 0 || u2.ID == 0 {
		t.Fatalf("expected synthetic IDs, got %d and %d", u1.ID, u2.ID)
	}
	if u1.ID == u2.ID {
		t.Fatalf("synthetic IDs must be unique, both %d", u1.ID)
	}
	if u1.Password != "password123" {
		t.Fatalf("SkipBcrypt should store marker password")
	}
}
