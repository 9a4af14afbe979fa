package content

import "github.com/google/uuid"

// Unplaced is the position of a row that exists but has not been given a slot
// in its sibling group yet. It is only ever visible inside the transaction that
// created the row.
const Unplaced = -1

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
