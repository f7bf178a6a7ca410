package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ummahtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// sampleVideoURLs is a small curated set of publicly hosted sample clips so
// seeded catalog entries are actually playable in a dev frontend.
var sampleVideoURLs = []string{
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildVideo constructs a ready catalog video for the given user without
// persisting it. Useful for batching.
func (f *Factory) BuildVideo(user *models.User, category string, overrides ...func(*models.Video)) *models.Video {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	video := &models.Video{
		Title:           gofakeit.Sentence(5),
		Description:     gofakeit.Paragraph(1, 3, 5, "\n"),
		Category:        category,
		VideoURL:        sampleVideoURLs[r.Intn(len(sampleVideoURLs))],
		ThumbnailURL:    fmt.Sprintf("https://picsum.photos/seed/%s/640/360", gofakeit.UUID()),
		DurationSeconds: gofakeit.Number(30, 3600),
		Views:           int64(r.Intn(10000)),
		Status:          models.VideoStatusReady,
		UserID:          user.ID,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	video.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(video)
	}
	return video
}

// CreateVideosBatch persists multiple videos in a single DB call when possible.
func (f *Factory) CreateVideosBatch(videos []*models.Video) error {
	if len(videos) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, v := range videos {
			f.nextID++
			v.ID = f.nextID
		}
		log.Printf("[dry-run] CreateVideosBatch: %d videos (no DB write)", len(videos))
		return nil
	}
	return f.db.Create(&videos).Error
}

// CreateVideo constructs and persists a sample `models.Video` for the given user.
func (f *Factory) CreateVideo(user *models.User, category string, overrides ...func(*models.Video)) (*models.Video, error) {
	video := f.BuildVideo(user, category, overrides...)

	if f.opts.DryRun {
		f.nextID++
		video.ID = f.nextID
		log.Printf("[dry-run] CreateVideo: category=%s user=%d title=%q", video.Category, video.UserID, video.Title)
		return video, nil
	}

	if err := f.db.Create(video).Error; err != nil {
		return nil, err
	}
	return video, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided video authored by the provided user.
func (f *Factory) CreateComment(user *models.User, video *models.Video, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		VideoID: video.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `video`.
func (f *Factory) CreateLike(user *models.User, video *models.Video) error {
	like := &models.Like{
		UserID:  user.ID,
		VideoID: video.ID,
	}
	return f.db.Create(like).Error
}

// CreateFollow persists a follow edge from `follower` to `followee`.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	follow := &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}
	return f.db.Create(follow).Error
}
