package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("users: invalid argument")

// Service is the user directory: device registration keyed by phone
// number, plus the profile updates the mobile app exposes.
type Service struct {
	repo Repository

	clock func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		clock: time.Now,
		newID: uuid.NewString,
	}
}

// Register upserts the user for the phone number. Re-registering an
// existing number refreshes the FCM token in place; the second return
// value reports whether a new user was created.
func (s *Service) Register(ctx context.Context, phone, countryCode, fcmToken string) (User, bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || fcmToken == "" {
		return User{}, false, ErrInvalidArgument
	}

	u := User{
		ID:                       s.newID(),
		PhoneNumber:              phone,
		FCMToken:                 fcmToken,
		PushNotificationsEnabled: true,
		CreatedAt:                s.clock().UTC(),
	}
	if countryCode != "" {
		u.CountryCode = &countryCode
	}
	return s.repo.Upsert(ctx, u)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (User, error) {
	if phone == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.GetByPhone(ctx, phone)
}

// UpdatePhone moves the user to a new phone number. Setting the same
// number again is allowed; a number owned by another user is rejected
// with ErrPhoneTaken.
func (s *Service) UpdatePhone(ctx context.Context, id, phone, countryCode string) error {
	phone = strings.TrimSpace(phone)
	if id == "" || phone == "" || countryCode == "" {
		return ErrInvalidArgument
	}
	return s.repo.UpdatePhone(ctx, id, phone, &countryCode)
}

func (s *Service) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.SetNotificationsEnabled(ctx, id, enabled)
}
