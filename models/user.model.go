package models

import "time"

// Role is the marketplace-wide user role. Every authenticated identity
// resolves to exactly one role; absence resolves to RoleParent.
type Role string

const (
	RoleParent Role = "parent"
	RoleSitter Role = "sitter"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes a raw role value, mapping the legacy "babysitter"
// alias to RoleSitter. Unknown values return the empty Role.
func ParseRole(raw string) Role {
	switch raw {
	case "parent":
		return RoleParent
	case "sitter", "babysitter":
		return RoleSitter
	case "admin":
		return RoleAdmin
	default:
		return ""
	}
}

type User struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	DisplayName        string   `json:"displayName"`
	Role               Role     `json:"role"`
	PreferredLanguage  string   `json:"preferredLanguage"`
	UserNumber         *string  `json:"userNumber"`
	PhoneNumber        *string  `json:"phoneNumber"`
	ProfileImageURL    *string  `json:"profileImageUrl"`
	Theme              string   `json:"theme"`
	IsVerified         bool     `json:"isVerified"`
	VerificationStatus *string  `json:"verificationStatus"`
	IsActive           bool     `json:"isActive"`
	HourlyRate         *float64 `json:"hourlyRate"`
	Bio                *string  `json:"bio"`
	Address            *string  `json:"address"`
	City               *string  `json:"city"`
	Country            *string  `json:"country"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UserFromRow maps a users table row onto the wire model.
func UserFromRow(row map[string]any) User {
	u := User{
		ID:                 rowString(row, "id"),
		Email:              rowString(row, "email"),
		DisplayName:        rowString(row, "display_name"),
		Role:               RoleParent,
		PreferredLanguage:  "en",
		UserNumber:         rowStringPtr(row, "user_number"),
		PhoneNumber:        rowStringPtr(row, "phone_number"),
		ProfileImageURL:    rowStringPtr(row, "photo_url"),
		Theme:              "auto",
		IsVerified:         rowBool(row, "is_verified"),
		VerificationStatus: rowStringPtr(row, "verification_status"),
		IsActive:           rowBool(row, "is_active"),
		HourlyRate:         rowFloatPtr(row, "hourly_rate"),
		Bio:                rowStringPtr(row, "bio"),
		Address:            rowStringPtr(row, "address"),
		City:               rowStringPtr(row, "city"),
		Country:            rowStringPtr(row, "country"),
		Latitude:           rowFloatPtr(row, "latitude"),
		Longitude:          rowFloatPtr(row, "longitude"),
		CreatedAt:          rowTime(row, "created_at"),
		UpdatedAt:          rowTime(row, "updated_at"),
	}
	if r := ParseRole(rowString(row, "role")); r != "" {
		u.Role = r
	}
	if lang := rowString(row, "preferred_language"); lang != "" {
		u.PreferredLanguage = lang
	}
	if theme := rowString(row, "theme"); theme != "" {
		u.Theme = theme
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	return u
}
