package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
	"github.com/msafryx/carelum-backend/utils"
)

type UpdateMeInput struct {
	DisplayName       *string  `json:"displayName"`
	PhoneNumber       *string  `json:"phoneNumber"`
	ProfileImageURL   *string  `json:"profileImageUrl"`
	PreferredLanguage *string  `json:"preferredLanguage"`
	Theme             *string  `json:"theme"`
	Bio               *string  `json:"bio"`
	Address           *string  `json:"address"`
	City              *string  `json:"city"`
	Country           *string  `json:"country"`
	HourlyRate        *float64 `json:"hourlyRate"`
}

type UpdateLocationInput struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// GetMe returns the caller's profile. A verified identity whose profile
// row has not landed yet still gets a minimal profile instead of a 404.
func (ct *Controller) GetMe(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "users", store.Query{
		Filters: []store.Filter{store.Eq("id", user.ID)},
		Limit:   1,
	})
	if err != nil {
		ct.Log.Error("get profile", zap.Error(err), zap.String("user_id", user.ID))
		security.SendStoreError(c, err, "Failed to load profile")
		return
	}
	if len(rows) == 0 {
		now := time.Now().UTC()
		c.JSON(http.StatusOK, models.User{
			ID:                user.ID,
			Email:             user.Email,
			Role:              user.Role,
			PreferredLanguage: "en",
			Theme:             "auto",
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		return
	}
	c.JSON(http.StatusOK, models.UserFromRow(rows[0]))
}

// UpdateMe patches the caller's own profile. The role column is not
// writable through this endpoint.
func (ct *Controller) UpdateMe(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input UpdateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	patch := store.Row{"updated_at": time.Now().UTC()}
	if input.DisplayName != nil {
		patch["display_name"] = *input.DisplayName
	}
	if input.PhoneNumber != nil {
		patch["phone_number"] = *input.PhoneNumber
	}
	if input.ProfileImageURL != nil {
		patch["photo_url"] = *input.ProfileImageURL
	}
	if input.PreferredLanguage != nil {
		patch["preferred_language"] = *input.PreferredLanguage
	}
	if input.Theme != nil {
		patch["theme"] = *input.Theme
	}
	if input.Bio != nil {
		patch["bio"] = *input.Bio
	}
	if input.Address != nil {
		patch["address"] = *input.Address
	}
	if input.City != nil {
		patch["city"] = *input.City
	}
	if input.Country != nil {
		patch["country"] = *input.Country
	}
	if input.HourlyRate != nil {
		patch["hourly_rate"] = *input.HourlyRate
	}
	if len(patch) == 1 {
		security.SendValidationError(c, "No updatable fields in request body", nil)
		return
	}

	rows, err := ct.scoped(c).Update(c.Request.Context(), "users",
		[]store.Filter{store.Eq("id", user.ID)}, patch)
	if err != nil {
		ct.Log.Error("update profile", zap.Error(err), zap.String("user_id", user.ID))
		security.SendStoreError(c, err, "Failed to update profile")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "profile")
		return
	}
	c.JSON(http.StatusOK, models.UserFromRow(rows[0]))
}

// UpdateMyLocation stores the caller's coordinates for nearby discovery
// and distance display.
func (ct *Controller) UpdateMyLocation(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input UpdateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		security.SendValidationError(c, "Coordinates out of range", input)
		return
	}

	rows, err := ct.scoped(c).Update(c.Request.Context(), "users",
		[]store.Filter{store.Eq("id", user.ID)},
		store.Row{
			"latitude":   input.Latitude,
			"longitude":  input.Longitude,
			"updated_at": time.Now().UTC(),
		})
	if err != nil {
		ct.Log.Error("update location", zap.Error(err), zap.String("user_id", user.ID))
		security.SendStoreError(c, err, "Failed to update location")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "profile")
		return
	}
	c.JSON(http.StatusOK, models.UserFromRow(rows[0]))
}

// sitterListing is a sitter profile plus the computed distance to the
// caller, when both positions are known.
type sitterListing struct {
	models.User
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// ListSitters returns active verified sitters, optionally narrowed by
// city or by live distance from the caller's stored position.
func (ct *Controller) ListSitters(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var maxKm *float64
	if raw := c.Query("maxDistanceKm"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil || km <= 0 {
			security.SendValidationError(c, "maxDistanceKm must be a positive number", raw)
			return
		}
		maxKm = &km
	}
	city := c.Query("city")

	st := ct.scoped(c)

	var origin *models.User
	if maxKm != nil {
		rows, err := st.Select(c.Request.Context(), "users", store.Query{
			Filters: []store.Filter{store.Eq("id", user.ID)},
			Limit:   1,
		})
		if err != nil {
			security.SendStoreError(c, err, "Failed to load profile")
			return
		}
		if len(rows) == 0 {
			security.SendValidationError(c, "Distance filtering needs your stored location", nil)
			return
		}
		me := models.UserFromRow(rows[0])
		if me.Latitude == nil || me.Longitude == nil {
			security.SendValidationError(c, "Distance filtering needs your stored location", nil)
			return
		}
		origin = &me
	}

	rows, err := st.Select(c.Request.Context(), "users", store.Query{
		Filters: []store.Filter{
			store.In("role", "sitter", "babysitter"),
			store.Eq("is_active", true),
			store.Eq("is_verified", true),
		},
		OrderBy: "display_name",
	})
	if err != nil {
		ct.Log.Error("list sitters", zap.Error(err))
		security.SendStoreError(c, err, "Failed to load sitters")
		return
	}

	out := make([]sitterListing, 0, len(rows))
	for _, row := range rows {
		sitter := models.UserFromRow(row)
		if city != "" && (sitter.City == nil || !strings.EqualFold(*sitter.City, city)) {
			continue
		}
		listing := sitterListing{User: sitter}
		if origin != nil {
			if sitter.Latitude == nil || sitter.Longitude == nil {
				continue
			}
			km := utils.HaversineKm(*origin.Latitude, *origin.Longitude, *sitter.Latitude, *sitter.Longitude)
			if km > *maxKm {
				continue
			}
			listing.DistanceKm = &km
		}
		out = append(out, listing)
	}
	c.JSON(http.StatusOK, out)
}
