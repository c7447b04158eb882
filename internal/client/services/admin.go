package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

// UserSource reports the signed-in user. AuthService satisfies it.
type UserSource interface {
	CurrentUser() (models.User, bool)
}

// AdminService wraps the admin endpoints. Every call first checks that the
// current user is an admin and fails with common.ErrAuthorization without
// touching the network otherwise.
type AdminService interface {
	Stats(ctx context.Context, days int) (models.AdminStats, error)
	Users(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	SetAdmin(ctx context.Context, userID int, admin bool) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Refund(ctx context.Context, txID int, reason string) error
	Gateways(ctx context.Context) ([]models.PaymentGateway, error)
	// SaveGateway creates the gateway when it has no id, else replaces it.
	SaveGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error)
	DeleteGateway(ctx context.Context, id int) error
	ToggleGateway(ctx context.Context, id int) (models.PaymentGateway, error)
}

type adminService struct {
	api   client.AdminAPI
	users UserSource
	log   logging.Logger
}

func NewAdminService(api client.AdminAPI, users UserSource, log logging.Logger) AdminService {
	if log == nil {
		log = logging.Nop()
	}
	return &adminService{api: api, users: users, log: log}
}

func (a *adminService) gate() error {
	u, ok := a.users.CurrentUser()
	if !ok {
		return common.ErrAuthentication
	}
	if !u.IsAdmin {
		return fmt.Errorf("admin access: %w", common.ErrAuthorization)
	}
	return nil
}

func (a *adminService) Stats(ctx context.Context, days int) (models.AdminStats, error) {
	if err := a.gate(); err != nil {
		return models.AdminStats{}, err
	}
	s, err := a.api.Stats(ctx, days)
	if err != nil {
		return models.AdminStats{}, fmt.Errorf("admin stats error: %w", err)
	}
	return s, nil
}

func (a *adminService) Users(ctx context.Context) ([]models.User, error) {
	if err := a.gate(); err != nil {
		return nil, err
	}
	users, err := a.api.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin users error: %w", err)
	}
	return users, nil
}

func (a *adminService) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := a.gate(); err != nil {
		return models.User{}, err
	}
	out, err := a.api.UpdateUser(ctx, u)
	if err != nil {
		return models.User{}, fmt.Errorf("admin update user %d error: %w", u.ID, err)
	}
	a.log.Info(ctx, "user updated by admin", "user_id", u.ID)
	return out, nil
}

func (a *adminService) SetAdmin(ctx context.Context, userID int, admin bool) (models.User, error) {
	users, err := a.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			u.IsAdmin = admin
			return a.UpdateUser(ctx, u)
		}
	}
	return models.User{}, fmt.Errorf("user %d: %w", userID, common.ErrNotFound)
}

func (a *adminService) DeleteUser(ctx context.Context, id int) error {
	if err := a.gate(); err != nil {
		return err
	}
	if err := a.api.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("admin delete user %d error: %w", id, err)
	}
	a.log.Info(ctx, "user deleted by admin", "user_id", id)
	return nil
}

func (a *adminService) Transactions(ctx context.Context) ([]models.Transaction, error) {
	if err := a.gate(); err != nil {
		return nil, err
	}
	txs, err := a.api.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin transactions error: %w", err)
	}
	return txs, nil
}

func (a *adminService) Refund(ctx context.Context, txID int, reason string) error {
	if err := a.gate(); err != nil {
		return err
	}
	req := models.RefundRequest{TransactionID: txID, Reason: reason}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if err := a.api.Refund(ctx, req); err != nil {
		return fmt.Errorf("refund transaction %d error: %w", txID, err)
	}
	a.log.Info(ctx, "transaction refunded", "transaction_id", txID)
	return nil
}

func (a *adminService) Gateways(ctx context.Context) ([]models.PaymentGateway, error) {
	if err := a.gate(); err != nil {
		return nil, err
	}
	gws, err := a.api.Gateways(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment gateways error: %w", err)
	}
	return gws, nil
}

func (a *adminService) SaveGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error) {
	if err := a.gate(); err != nil {
		return models.PaymentGateway{}, err
	}
	if err := validation.Struct(g); err != nil {
		return models.PaymentGateway{}, err
	}

	var (
		out models.PaymentGateway
		err error
	)
	if g.ID == 0 {
		out, err = a.api.CreateGateway(ctx, g)
	} else {
		out, err = a.api.UpdateGateway(ctx, g)
	}
	if err != nil {
		return models.PaymentGateway{}, fmt.Errorf("save payment gateway error: %w", err)
	}
	return out, nil
}

func (a *adminService) DeleteGateway(ctx context.Context, id int) error {
	if err := a.gate(); err != nil {
		return err
	}
	if err := a.api.DeleteGateway(ctx, id); err != nil {
		return fmt.Errorf("delete payment gateway %d error: %w", id, err)
	}
	return nil
}

func (a *adminService) ToggleGateway(ctx context.Context, id int) (models.PaymentGateway, error) {
	if err := a.gate(); err != nil {
		return models.PaymentGateway{}, err
	}
	g, err := a.api.ToggleGateway(ctx, id)
	if err != nil {
		return models.PaymentGateway{}, fmt.Errorf("toggle payment gateway %d error: %w", id, err)
	}
	return g, nil
}
