package store

import (
	"log"
	"time"
)

// SeedDemoData gives a user who owns no boards a small fixed starter set:
// two boards with one pending task each. A user who already owns at least
// one board is left alone, so calling this twice changes nothing.
func (s *Store) SeedDemoData(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, board := range s.data.Boards {
		if board.UserID == userID {
			return nil
		}
	}

	now := time.Now().UTC()
	alpha := s.addBoard("Project Alpha", "Demo project board", userID, now)
	beta := s.addBoard("Project Beta", "Second demo board", userID, now)
	s.addTask("Initial setup", "Install dependencies", alpha.ID, nil, now)
	s.addTask("Design mockups", "UI/UX design", beta.ID, nil, now)

	if err := s.persist(); err != nil {
		return err
	}
	log.Printf("Seeded demo boards and tasks for user %d", userID)
	return nil
}
