package repository

import (
	settlementRepo "paysofter-checkout/internal/repository/settlement"
)

// IRepository is a container for all repository interfaces
type IRepository struct {
	Settlement settlementRepo.IRepository
}
