package model

import (
	"regexp"
	"strings"
	"time"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9_]`)
)

// Category groups plans by area (work, health, study, etc.). Its ID is the
// slug of the name, so creating a category twice overwrites it.
type Category struct {
	ID        string `gorm:"primaryKey"`
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategorySlug derives a category id from its display name: trimmed,
// lower-cased, whitespace runs turned into "_" and everything outside
// [a-z0-9_] dropped. Non-Latin names therefore reduce to an empty slug.
func CategorySlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSpaces.ReplaceAllString(slug, "_")
	return slugInvalid.ReplaceAllString(slug, "")
}

// Validate checks that the category has a usable slug and name.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("category", "name", "is required")
	}
	if c.ID == "" {
		return invalid("category", "id", "is empty after normalization")
	}
	if c.ID != CategorySlug(c.ID) {
		return invalid("category", "id", "contains characters outside [a-z0-9_]")
	}
	return nil
}
