package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reference builders tie log entries back to the event that produced them.
// The formats are stable and parsed by reporting tools, do not change them.

// AssignmentReference labels the OUT entry written when a unit is handed out.
func AssignmentReference(assignmentID uuid.UUID) string {
	return fmt.Sprintf("ASSIGN-%s", assignmentID)
}

// ReturnReference labels the IN entry written when a unit comes back.
func ReturnReference(assignmentID uuid.UUID) string {
	return fmt.Sprintf("RETURN-%s", assignmentID)
}

// InitialReference labels IN entries for units created with a new product.
func InitialReference(productID uuid.UUID, seq int) string {
	return fmt.Sprintf("INIT-%s-%d", productID, seq)
}

// AdditionReference labels IN entries for units added to an existing product.
func AdditionReference(at time.Time, seq int) string {
	return fmt.Sprintf("ADD-%d-%d", at.Unix(), seq)
}

// UpdateReference labels ADJUSTMENT entries from manual status edits.
func UpdateReference(at time.Time) string {
	return fmt.Sprintf("UPD-%d", at.Unix())
}
