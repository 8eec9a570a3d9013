package domain

import "time"

// LabelText is the free text printed beside the nutrition panel
type LabelText struct {
	Ingredients string `json:"ingredients"`
	Contains    string `json:"contains,omitempty"`
	MayContain  string `json:"mayContain,omitempty"`
	FreeFrom    string `json:"freeFrom,omitempty"`
}

// LabelSnapshot freezes everything a label showed when it was generated, so
// later catalog, table or recipe edits do not change a saved label
type LabelSnapshot struct {
	Summary  *NutritionSummary `json:"summary"`
	Entries  []DisplayEntry    `json:"entries"`
	Text     LabelText         `json:"text"`
	Language string            `json:"language"`
}

// Label is a generated label saved for a product
type Label struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"ownerId"`
	ProductID     string        `json:"productId"`
	LabelTypeID   string        `json:"labelTypeId"`
	LabelTypeCode string        `json:"labelTypeCode"`
	Name          string        `json:"name"`
	Version       int           `json:"version"` // 1-based per product
	Snapshot      LabelSnapshot `json:"snapshot"`
	CreatedAt     time.Time     `json:"createdAt"`
}
