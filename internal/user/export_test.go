package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) UseMinBcryptCost() {
	s.bcryptCost = bcrypt.MinCost
}
