package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// WeekLabel identifies one weekly export, e.g. "2025-06-30 a 2025-07-06".
type WeekLabel string

// String returns the string representation
func (w WeekLabel) String() string { return string(w) }

// Slug returns a filesystem-safe form of the label used for snapshot files.
func (w WeekLabel) Slug() string {
	s := string(w)
	for _, old := range []string{" ", "-", "/", ":"} {
		s = strings.ReplaceAll(s, old, "_")
	}
	return s
}

// ParseWeekLabel parses a string into a WeekLabel
func ParseWeekLabel(s string) (WeekLabel, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("week label cannot be empty")
	}
	return WeekLabel(strings.TrimSpace(s)), nil
}

// AutomationName identifies an automation flow from the mapping file.
type AutomationName string

// String returns the string representation
func (a AutomationName) String() string { return string(a) }

// MessageName identifies a single automation message; it is the join key
// between weekly exports and the mapping table.
type MessageName string

// String returns the string representation
func (m MessageName) String() string { return string(m) }
