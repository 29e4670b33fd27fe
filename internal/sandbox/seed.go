package sandbox

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Demo credentials for both roles. Every seeded account uses seedPassword.
const (
	SeedBusinessEmail = "hire@worklane.dev"
	SeedPersonalEmail = "jobseeker@worklane.dev"
	SeedPassword      = "password"
	SeedJobPostingID  = 1
)

// seed populates an empty database with one business account, one personal
// account, a shared chat room, and enough notifications and applicants for
// the client to render something meaningful on first run.
func seed(db *gorm.DB) error {
	var accounts int64
	if err := db.Model(&Account{}).Count(&accounts).Error; err != nil {
		return err
	}
	if accounts > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	business := Account{
		Email:        SeedBusinessEmail,
		PasswordHash: string(hash),
		Name:         "Mirae Recruiting",
		AccountType:  0,
		CreatedAt:    now,
	}
	personal := Account{
		Email:        SeedPersonalEmail,
		PasswordHash: string(hash),
		Name:         "Dana Park",
		AccountType:  1,
		CreatedAt:    now,
	}
	if err := db.Create(&business).Error; err != nil {
		return err
	}
	if err := db.Create(&personal).Error; err != nil {
		return err
	}

	room := ChatRoom{
		ID:         uuid.NewString(),
		BusinessID: business.ID,
		PersonalID: personal.ID,
		CreatedAt:  now,
	}
	if err := db.Create(&room).Error; err != nil {
		return err
	}

	notifications := []Notification{
		{AccountID: business.ID, Message: "A new applicant applied to Backend Engineer", IsRead: 0, CreatedAt: now.Add(-2 * time.Hour)},
		{AccountID: business.ID, Message: "Your job posting was approved", IsRead: 1, CreatedAt: now.Add(-26 * time.Hour)},
		{AccountID: personal.ID, Message: "Mirae Recruiting viewed your resume", IsRead: 0, CreatedAt: now.Add(-time.Hour)},
		{AccountID: personal.ID, Message: "Your application passed document review", IsRead: 0, CreatedAt: now.Add(-30 * time.Minute)},
	}
	if err := db.Create(&notifications).Error; err != nil {
		return err
	}

	applicants := []Applicant{
		{JobPostingID: SeedJobPostingID, Name: "Dana Park", Status: ApplicantStatusReviewing, CreatedAt: now},
		{JobPostingID: SeedJobPostingID, Name: "Jun Lee", Status: ApplicantStatusPassed, CreatedAt: now},
		{JobPostingID: SeedJobPostingID, Name: "Min Choi", Status: ApplicantStatusFailed, CreatedAt: now},
		{JobPostingID: SeedJobPostingID, Name: "Sora Kim", Status: ApplicantStatusInterviewed, CreatedAt: now},
		{JobPostingID: SeedJobPostingID, Name: "Haru Jung", Status: ApplicantStatusReviewing, CreatedAt: now},
	}
	return db.Create(&applicants).Error
}
