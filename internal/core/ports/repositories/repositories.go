package repositories

// RepositoryProvider bundles all repository implementations for wiring the
// service container.
type RepositoryProvider struct {
	OperationRepo      OperationRepositoryFacade
	ClientRepo         ClientRepositoryFacade
	BeneficiaryRepo    BeneficiaryRepository
	DepositAccountRepo DepositAccountRepository
	UserRepo           UserRepository
}
