package services

import (
	"errors"
	"fmt"

	"party-snap-system/models"
	"party-snap-system/store"
	"party-snap-system/utils"

	"github.com/google/uuid"
)

// AccessCodeService is the admin side of the license gate: issuing codes and
// inspecting the ledger.
type AccessCodeService struct {
	Store store.Store
}

func NewAccessCodeService(st store.Store) *AccessCodeService {
	return &AccessCodeService{Store: st}
}

// Generate issues a new one-time access code with the given prefix.
func (s *AccessCodeService) Generate(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: prefix is required", ErrInvalidArgument)
	}
	// Collisions are vanishingly rare with a 32^6 suffix, but the code column
	// is unique, so retry a couple of times rather than surface the conflict.
	for attempt := 0; attempt < 3; attempt++ {
		code := utils.NewAccessCode(prefix)
		ac := &models.AccessCode{ID: uuid.NewString(), Code: code}
		err := s.Store.CreateAccessCode(ac)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", store.ErrConflict
}

// List returns every issued code joined with the event that consumed it.
func (s *AccessCodeService) List() ([]models.AccessCodeInfo, error) {
	return s.Store.ListAccessCodes()
}
