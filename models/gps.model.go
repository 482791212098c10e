package models

import "time"

type GPSLocation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy"`
	Speed     *float64  `json:"speed"`
	Heading   *float64  `json:"heading"`
	CreatedAt time.Time `json:"createdAt"`
}

func GPSLocationFromRow(row map[string]any) GPSLocation {
	lat, _ := rowFloat(row, "latitude")
	lon, _ := rowFloat(row, "longitude")
	return GPSLocation{
		ID:        rowString(row, "id"),
		SessionID: rowString(row, "session_id"),
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  rowFloatPtr(row, "accuracy"),
		Speed:     rowFloatPtr(row, "speed"),
		Heading:   rowFloatPtr(row, "heading"),
		CreatedAt: rowTime(row, "created_at"),
	}
}
