package services

import (
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/platform/config"
)

// NewServiceContainer wires every application service against the repository
// provider and the external capabilities (OCR, file storage, mail).
func NewServiceContainer(
	repos *portsrepo.RepositoryProvider,
	cfg *config.Config,
	extractor portssvc.ReceiptExtractor,
	files portssvc.FileStore,
	mailer portssvc.Mailer,
) *portssvc.ServiceContainer {
	layout := NewLayoutService(repos.OperationRepo, files, mailer, cfg.TreasuryEmail)

	operation := NewOperationService(
		repos.OperationRepo,
		repos.ClientRepo,
		repos.DepositAccountRepo,
		WithReceiptExtractor(extractor),
		WithFileStore(files),
		WithLayoutService(layout),
		WithMaxUploadBytes(cfg.MaxUploadBytes),
	)

	return &portssvc.ServiceContainer{
		Client:         NewClientService(repos.ClientRepo),
		Operation:      operation,
		Beneficiary:    NewBeneficiaryService(repos.BeneficiaryRepo, repos.ClientRepo),
		DepositAccount: NewDepositAccountService(repos.DepositAccountRepo),
		User:           NewUserService(repos.UserRepo),
		Auth:           NewAuthService(repos.UserRepo, cfg),
		Layout:         layout,
	}
}
