// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ummahtube/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumVideos   int
	ShouldClean bool
	// DryRun builds entities without persisting them.
	DryRun bool
	// SkipBcrypt stores a plaintext marker password instead of hashing.
	// Dev-only speedup; bcrypt dominates seeding time for large user counts.
	SkipBcrypt bool
	// MaxDays bounds the random created_at spread.
	MaxDays int
}

// Distribution describes how seeded videos are split across categories,
// expressed in tenths (values must sum to 10).
type Distribution struct {
	Quran  int
	Hadith int
	Daawah int
}

var defaultDistribution = Distribution{Quran: 4, Hadith: 3, Daawah: 3}

// computeCounts splits total across the distribution, assigning the
// remainder to the first category.
func computeCounts(total int, d Distribution) (quran, hadith, daawah int) {
	quran = total * d.Quran / 10
	hadith = total * d.Hadith / 10
	daawah = total * d.Daawah / 10
	quran += total - quran - hadith - daawah
	return quran, hadith, daawah
}

// Run populates the database with test data
func Run(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d videos...", opts.NumUsers, opts.NumVideos)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	videos, err := createVideos(f, users, opts.NumVideos)
	if err != nil {
		return fmt.Errorf("failed to create videos: %w", err)
	}
	log.Printf("✓ %d videos created", len(videos))

	if !opts.DryRun {
		if err := seedEngagement(f, users, videos); err != nil {
			return fmt.Errorf("failed to seed engagement: %w", err)
		}
		log.Println("✓ likes, comments and follows seeded")
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, comments, likes, follows, videos, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include some well-known accounts for manual testing.
	if count >= 3 {
		baseUsers := []string{"admin", "dawah_daily", "test"}
		for i, name := range baseUsers {
			isAdmin := i == 0
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.IsAdmin = isAdmin
			})
			if err != nil {
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createVideos(f *Factory, users []*models.User, count int) ([]*models.Video, error) {
	if len(users) == 0 || count == 0 {
		return nil, nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	quran, hadith, daawah := computeCounts(count, defaultDistribution)

	videos := make([]*models.Video, 0, count)
	for _, batch := range []struct {
		category string
		n        int
	}{
		{models.CategoryQuran, quran},
		{models.CategoryHadith, hadith},
		{models.CategoryDaawah, daawah},
	} {
		built := make([]*models.Video, 0, batch.n)
		for i := 0; i < batch.n; i++ {
			user := users[r.Intn(len(users))]
			built = append(built, f.BuildVideo(user, batch.category))
		}
		if err := f.CreateVideosBatch(built); err != nil {
			return nil, err
		}
		videos = append(videos, built...)
	}

	return videos, nil
}

// seedEngagement creates a plausible mesh of likes, comments and follows.
func seedEngagement(f *Factory, users []*models.User, videos []*models.Video) error {
	if len(users) < 2 || len(videos) == 0 {
		return nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, video := range videos {
		// A handful of likes per video, skipping the owner.
		for i := 0; i < r.Intn(6); i++ {
			user := users[r.Intn(len(users))]
			if user.ID == video.UserID {
				continue
			}
			_ = f.CreateLike(user, video)
		}

		for i := 0; i < r.Intn(3); i++ {
			user := users[r.Intn(len(users))]
			if _, err := f.CreateComment(user, video); err != nil {
				return err
			}
		}
	}

	// Each user follows a few random creators.
	for _, follower := range users {
		for i := 0; i < r.Intn(4); i++ {
			followee := users[r.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			_ = f.CreateFollow(follower, followee)
		}
	}

	return nil
}
