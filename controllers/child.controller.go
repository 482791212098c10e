package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/policy"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type CreateChildInput struct {
	Name        string  `json:"name" binding:"required"`
	Age         *int    `json:"age"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender"`
	PhotoURL    *string `json:"photoUrl"`
}

type UpdateChildInput struct {
	Name        *string `json:"name"`
	Age         *int    `json:"age"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender"`
	PhotoURL    *string `json:"photoUrl"`
}

type UpsertInstructionsInput struct {
	FeedingSchedule     *string        `json:"feedingSchedule"`
	NapSchedule         *string        `json:"napSchedule"`
	Medication          *string        `json:"medication"`
	Allergies           *string        `json:"allergies"`
	EmergencyContacts   map[string]any `json:"emergencyContacts"`
	SpecialInstructions *string        `json:"specialInstructions"`
}

func (ct *Controller) CreateChild(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input CreateChildInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	now := time.Now().UTC()
	row := store.Row{
		"id":         uuid.NewString(),
		"parent_id":  user.ID,
		"name":       input.Name,
		"created_at": now,
		"updated_at": now,
	}
	if input.Age != nil {
		row["age"] = *input.Age
	}
	if input.DateOfBirth != nil {
		row["date_of_birth"] = *input.DateOfBirth
	}
	if input.Gender != nil {
		row["gender"] = *input.Gender
	}
	if input.PhotoURL != nil {
		row["photo_url"] = *input.PhotoURL
	}

	created, err := ct.scoped(c).Insert(c.Request.Context(), "children", row)
	if err != nil {
		ct.Log.Error("create child", zap.Error(err))
		security.SendStoreError(c, err, "Failed to create child")
		return
	}
	c.JSON(http.StatusCreated, models.ChildFromRow(created))
}

func (ct *Controller) ListMyChildren(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "children", store.Query{
		Filters: []store.Filter{store.Eq("parent_id", user.ID)},
		OrderBy: "created_at",
	})
	if err != nil {
		ct.Log.Error("list children", zap.Error(err))
		security.SendStoreError(c, err, "Failed to load children")
		return
	}

	out := make([]models.Child, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ChildFromRow(row))
	}
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) GetChild(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	child, found, err := ct.loadChild(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load child")
		return
	}
	if !found {
		security.SendNotFoundError(c, "child")
		return
	}
	if !policy.CanAccessChild(child, user) {
		security.SendForbiddenError(c, "This child belongs to another parent")
		return
	}
	c.JSON(http.StatusOK, child)
}

func (ct *Controller) UpdateChild(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input UpdateChildInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	child, found, err := ct.loadChild(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load child")
		return
	}
	if !found {
		security.SendNotFoundError(c, "child")
		return
	}
	if !policy.CanAccessChild(child, user) {
		security.SendForbiddenError(c, "This child belongs to another parent")
		return
	}

	patch := store.Row{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		patch["name"] = *input.Name
	}
	if input.Age != nil {
		patch["age"] = *input.Age
	}
	if input.DateOfBirth != nil {
		patch["date_of_birth"] = *input.DateOfBirth
	}
	if input.Gender != nil {
		patch["gender"] = *input.Gender
	}
	if input.PhotoURL != nil {
		patch["photo_url"] = *input.PhotoURL
	}

	rows, err := ct.scoped(c).Update(c.Request.Context(), "children",
		[]store.Filter{store.Eq("id", child.ID)}, patch)
	if err != nil {
		ct.Log.Error("update child", zap.Error(err), zap.String("child_id", child.ID))
		security.SendStoreError(c, err, "Failed to update child")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "child")
		return
	}
	c.JSON(http.StatusOK, models.ChildFromRow(rows[0]))
}

func (ct *Controller) DeleteChild(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	child, found, err := ct.loadChild(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load child")
		return
	}
	if !found {
		security.SendNotFoundError(c, "child")
		return
	}
	if !policy.CanAccessChild(child, user) {
		security.SendForbiddenError(c, "This child belongs to another parent")
		return
	}

	if _, err := ct.scoped(c).Delete(c.Request.Context(), "children",
		[]store.Filter{store.Eq("id", child.ID)}); err != nil {
		ct.Log.Error("delete child", zap.Error(err), zap.String("child_id", child.ID))
		security.SendStoreError(c, err, "Failed to delete child")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": child.ID})
}

// GetChildInstructions returns the care instructions for one child.
// Sitters with an accepted or active session covering the child may
// read them; writing stays with the parent.
func (ct *Controller) GetChildInstructions(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	child, found, err := ct.loadChild(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load child")
		return
	}
	if !found {
		security.SendNotFoundError(c, "child")
		return
	}
	if !policy.CanAccessChild(child, user) && !ct.sitterCaresFor(c, child.ID, user.ID) {
		security.SendForbiddenError(c, "You do not care for this child")
		return
	}

	rows, err := ct.scoped(c).Select(c.Request.Context(), "child_instructions", store.Query{
		Filters: []store.Filter{store.Eq("child_id", child.ID)},
		Limit:   1,
	})
	if err != nil {
		security.SendStoreError(c, err, "Failed to load instructions")
		return
	}
	if len(rows) == 0 {
		security.SendNotFoundError(c, "instructions")
		return
	}
	c.JSON(http.StatusOK, models.ChildInstructionsFromRow(rows[0]))
}

// UpsertChildInstructions creates or replaces the care instructions for
// one child.
func (ct *Controller) UpsertChildInstructions(c *gin.Context) {
	user, ok := ct.currentUser(c)
	if !ok {
		return
	}

	var input UpsertInstructionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	child, found, err := ct.loadChild(c)
	if err != nil {
		security.SendStoreError(c, err, "Failed to load child")
		return
	}
	if !found {
		security.SendNotFoundError(c, "child")
		return
	}
	if !policy.CanAccessChild(child, user) {
		security.SendForbiddenError(c, "This child belongs to another parent")
		return
	}

	now := time.Now().UTC()
	patch := store.Row{"updated_at": now}
	if input.FeedingSchedule != nil {
		patch["feeding_schedule"] = *input.FeedingSchedule
	}
	if input.NapSchedule != nil {
		patch["nap_schedule"] = *input.NapSchedule
	}
	if input.Medication != nil {
		patch["medication"] = *input.Medication
	}
	if input.Allergies != nil {
		patch["allergies"] = *input.Allergies
	}
	if input.EmergencyContacts != nil {
		patch["emergency_contacts"] = mustJSONObject(input.EmergencyContacts)
	}
	if input.SpecialInstructions != nil {
		patch["special_instructions"] = *input.SpecialInstructions
	}

	st := ct.scoped(c)
	rows, err := st.Update(c.Request.Context(), "child_instructions",
		[]store.Filter{store.Eq("child_id", child.ID)}, patch)
	if err != nil {
		security.SendStoreError(c, err, "Failed to save instructions")
		return
	}
	if len(rows) > 0 {
		c.JSON(http.StatusOK, models.ChildInstructionsFromRow(rows[0]))
		return
	}

	row := store.Row{
		"id":         uuid.NewString(),
		"child_id":   child.ID,
		"parent_id":  child.ParentID,
		"created_at": now,
	}
	for k, v := range patch {
		row[k] = v
	}
	created, err := st.Insert(c.Request.Context(), "child_instructions", row)
	if err != nil {
		ct.Log.Error("create instructions", zap.Error(err), zap.String("child_id", child.ID))
		security.SendStoreError(c, err, "Failed to save instructions")
		return
	}
	c.JSON(http.StatusCreated, models.ChildInstructionsFromRow(created))
}

// sitterCaresFor reports whether the sitter holds an accepted or active
// session that includes the child.
func (ct *Controller) sitterCaresFor(c *gin.Context, childID, sitterID string) bool {
	rows, err := ct.scoped(c).Select(c.Request.Context(), "sessions", store.Query{
		Filters: []store.Filter{
			store.Eq("sitter_id", sitterID),
			store.In("status", string(models.StatusAccepted), string(models.StatusActive)),
		},
	})
	if err != nil {
		return false
	}
	for _, row := range rows {
		s := models.SessionFromRow(row)
		if s.ChildID == childID {
			return true
		}
		for _, id := range s.ChildIDs {
			if id == childID {
				return true
			}
		}
	}
	return false
}

func (ct *Controller) loadChild(c *gin.Context) (models.Child, bool, error) {
	id := c.Param("id")
	rows, err := ct.scoped(c).Select(c.Request.Context(), "children", store.Query{
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		ct.Log.Error("load child", zap.Error(err), zap.String("child_id", id))
		return models.Child{}, false, err
	}
	if len(rows) == 0 {
		return models.Child{}, false, nil
	}
	return models.ChildFromRow(rows[0]), true, nil
}

func mustJSONObject(v map[string]any) string {
	s := mustJSON(v)
	if s == "[]" {
		return "{}"
	}
	return s
}
