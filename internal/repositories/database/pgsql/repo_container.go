package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		OperationRepo:      newPgxOperationRepository(dbPool),
		ClientRepo:         newPgxClientRepository(dbPool),
		BeneficiaryRepo:    newPgxBeneficiaryRepository(dbPool),
		DepositAccountRepo: newPgxDepositAccountRepository(dbPool),
		UserRepo:           newPgxUserRepository(dbPool),
	}
}
