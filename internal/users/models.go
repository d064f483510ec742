package users

import "time"

// User is a registered mobile app user, keyed by unique phone number.
type User struct {
	ID                       string    `json:"userId" db:"id"`
	PhoneNumber              string    `json:"phoneNumber" db:"phone_number"`
	CountryCode              *string   `json:"countryCode" db:"country_code"`
	FCMToken                 string    `json:"fcmToken" db:"fcm_token"`
	PushNotificationsEnabled bool      `json:"pushNotificationsEnabled" db:"push_notifications_enabled"`
	CreatedAt                time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt                time.Time `json:"updatedAt" db:"updated_at"`
}
