package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

func TestConflictError_ListsEveryDay(t *testing.T) {
	err := &ConflictError{
		DeskID: "desk-1",
		Conflicts: []Conflict{
			{Day: testDay(t, "2026-03-04"), OccupantName: "Alice", Status: domain.StatusAssigned},
			{Day: testDay(t, "2026-03-05"), Status: domain.StatusBooked},
		},
	}

	msg := err.Error()
	require.Contains(t, msg, "booking conflict on desk desk-1 (2 day(s)):")
	require.Contains(t, msg, "\n  - 2026-03-04: Alice (assigned)")
	require.Contains(t, msg, "\n  - 2026-03-05 (booked)")
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "price", Message: "must not be negative"}
	require.Equal(t, "invalid price: must not be negative", err.Error())
}
