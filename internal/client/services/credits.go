package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

// MeetingCost is what a booking moves from requester to expert once the
// meeting completes.
const MeetingCost = 1

// DefaultPackages is the purchase catalogue.
var DefaultPackages = []models.CreditPackage{
	{ID: 1, Name: "Basic", Credits: 100, Price: 10},
	{ID: 2, Name: "Standard", Credits: 300, Price: 25},
	{ID: 3, Name: "Premium", Credits: 500, Price: 40},
	{ID: 4, Name: "Professional", Credits: 1000, Price: 75},
}

type CreditState struct {
	Balance      int
	Transactions []models.Transaction
	// Loaded is set once a balance has been read from the server.
	Loaded bool
	Err    error
}

type CreditService interface {
	FetchBalance(ctx context.Context) error
	FetchTransactions(ctx context.Context) error
	// Purchase posts the order and re-reads balance and history.
	Purchase(ctx context.Context, req models.PurchaseRequest) error
	Packages() []models.CreditPackage
	// CheckFunds returns common.ErrInsufficientCredits when the cached
	// balance is below cost.
	CheckFunds(cost int) error

	State() CreditState
	Subscribe(fn func(CreditState)) (cancel func())
}

type creditService struct {
	api client.CreditAPI
	log logging.Logger

	mu    sync.Mutex
	state CreditState
	subs  observers[CreditState]
}

func NewCreditService(api client.CreditAPI, log logging.Logger) CreditService {
	if log == nil {
		log = logging.Nop()
	}
	return &creditService{api: api, log: log}
}

func (c *creditService) State() CreditState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Transactions = append([]models.Transaction(nil), s.Transactions...)
	return s
}

func (c *creditService) Subscribe(fn func(CreditState)) func() {
	return c.subs.subscribe(fn)
}

func (c *creditService) set(fn func(s *CreditState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.subs.notify(c.State())
}

func (c *creditService) fail(ctx context.Context, op string, err error) error {
	c.log.Warn(ctx, op+" failed", "error", err)
	c.set(func(s *CreditState) { s.Err = err })
	return err
}

func (c *creditService) FetchBalance(ctx context.Context) error {
	b, err := c.api.Balance(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return c.fail(ctx, "fetch balance", fmt.Errorf("fetch balance error: %w", err))
	}

	c.set(func(s *CreditState) {
		s.Balance = b.Balance
		s.Loaded = true
		s.Err = nil
	})
	return nil
}

func (c *creditService) FetchTransactions(ctx context.Context) error {
	txs, err := c.api.Transactions(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return c.fail(ctx, "fetch transactions", fmt.Errorf("fetch transactions error: %w", err))
	}

	c.set(func(s *CreditState) {
		s.Transactions = txs
		s.Err = nil
	})
	return nil
}

func (c *creditService) Purchase(ctx context.Context, req models.PurchaseRequest) error {
	if err := validation.Struct(req); err != nil {
		return c.fail(ctx, "purchase", err)
	}

	if err := c.api.Purchase(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return c.fail(ctx, "purchase", fmt.Errorf("purchase error: %w", err))
	}
	c.log.Info(ctx, "credits purchased", "package_id", req.PackageID, "amount", req.Amount)

	if err := c.FetchBalance(ctx); err != nil {
		return err
	}
	return c.FetchTransactions(ctx)
}

func (c *creditService) Packages() []models.CreditPackage {
	return append([]models.CreditPackage(nil), DefaultPackages...)
}

func (c *creditService) CheckFunds(cost int) error {
	c.mu.Lock()
	balance := c.state.Balance
	c.mu.Unlock()

	if balance < cost {
		return fmt.Errorf("%w: balance %d, need %d", common.ErrInsufficientCredits, balance, cost)
	}
	return nil
}
