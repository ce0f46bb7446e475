package service

import (
	"errors"
	"strings"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
)

// notFound replaces a repository miss with the entity-specific error.
func notFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

// duplicateEmail replaces a unique key conflict with ErrDuplicateEmail.
func duplicateEmail(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return entity.ErrDuplicateEmail
	}
	return err
}

func requireSeller(sellerID string) error {
	if strings.TrimSpace(sellerID) == "" {
		return entity.ErrNotAuthorized
	}
	return nil
}

// required takes name, value pairs and rejects the first blank value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return entity.InvalidInputf("%s is required", pairs[i])
		}
	}
	return nil
}
