package clinic

import (
	"cmp"
	"slices"
)

// QueueEntry is a waiting patient and its position, starting at 1.
type QueueEntry struct {
	Position int      `json:"position"`
	Patient  *Patient `json:"patient"`
}

// orderQueue sorts waiting patients: emergency before urgent before normal,
// then by ticket issue time. Patients without a ticket are dropped.
func orderQueue(patients []Patient) []QueueEntry {
	waiting := make([]*Patient, 0, len(patients))
	for i := range patients {
		if patients[i].Ticket != nil {
			waiting = append(waiting, &patients[i])
		}
	}

	slices.SortStableFunc(waiting, func(a, b *Patient) int {
		if c := cmp.Compare(b.Ticket.Type.Priority(), a.Ticket.Type.Priority()); c != 0 {
			return c
		}
		if c := a.Ticket.CreatedAt.Compare(b.Ticket.CreatedAt); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	entries := make([]QueueEntry, len(waiting))
	for i, p := range waiting {
		entries[i] = QueueEntry{Position: i + 1, Patient: p}
	}
	return entries
}
