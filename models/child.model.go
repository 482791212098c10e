package models

import "time"

type Child struct {
	ID           string    `json:"id"`
	ParentID     string    `json:"parentId"`
	Name         string    `json:"name"`
	Age          *int      `json:"age"`
	DateOfBirth  *string   `json:"dateOfBirth"`
	Gender       *string   `json:"gender"`
	PhotoURL     *string   `json:"photoUrl"`
	ChildNumber  *string   `json:"childNumber"`
	ParentNumber *string   `json:"parentNumber"`
	SitterNumber *string   `json:"sitterNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ChildFromRow(row map[string]any) Child {
	c := Child{
		ID:           rowString(row, "id"),
		ParentID:     rowString(row, "parent_id"),
		Name:         rowString(row, "name"),
		Age:          rowIntPtr(row, "age"),
		DateOfBirth:  rowStringPtr(row, "date_of_birth"),
		Gender:       rowStringPtr(row, "gender"),
		PhotoURL:     rowStringPtr(row, "photo_url"),
		ChildNumber:  rowStringPtr(row, "child_number"),
		ParentNumber: rowStringPtr(row, "parent_number"),
		SitterNumber: rowStringPtr(row, "sitter_number"),
		CreatedAt:    rowTime(row, "created_at"),
		UpdatedAt:    rowTime(row, "updated_at"),
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	return c
}

type ChildInstructions struct {
	ID                  string          `json:"id"`
	ChildID             string          `json:"childId"`
	ParentID            string          `json:"parentId"`
	FeedingSchedule     *string         `json:"feedingSchedule"`
	NapSchedule         *string         `json:"napSchedule"`
	Medication          *string         `json:"medication"`
	Allergies           *string         `json:"allergies"`
	EmergencyContacts   map[string]any  `json:"emergencyContacts"`
	SpecialInstructions *string         `json:"specialInstructions"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func ChildInstructionsFromRow(row map[string]any) ChildInstructions {
	ci := ChildInstructions{
		ID:                  rowString(row, "id"),
		ChildID:             rowString(row, "child_id"),
		ParentID:            rowString(row, "parent_id"),
		FeedingSchedule:     rowStringPtr(row, "feeding_schedule"),
		NapSchedule:         rowStringPtr(row, "nap_schedule"),
		Medication:          rowStringPtr(row, "medication"),
		Allergies:           rowStringPtr(row, "allergies"),
		SpecialInstructions: rowStringPtr(row, "special_instructions"),
		CreatedAt:           rowTime(row, "created_at"),
		UpdatedAt:           rowTime(row, "updated_at"),
	}
	rowJSON(row, "emergency_contacts", &ci.EmergencyContacts)
	if ci.UpdatedAt.IsZero() {
		ci.UpdatedAt = ci.CreatedAt
	}
	return ci
}
