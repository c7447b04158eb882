package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
)

// Credits shows the balance and the transaction history.
func (a *App) Credits(ctx context.Context, _ []string) error {
	if err := a.credits.FetchBalance(ctx); err != nil {
		return err
	}
	if err := a.credits.FetchTransactions(ctx); err != nil {
		return err
	}

	st := a.credits.State()
	printf("Balance: %d credits", st.Balance)
	for _, tx := range st.Transactions {
		printlnFn("  " + views.TransactionLine(tx))
	}
	return nil
}

// Buy purchases a package. Without an argument the catalogue is listed and
// the user picks one.
func (a *App) Buy(ctx context.Context, args []string) error {
	packages := a.credits.Packages()

	var choice string
	if len(args) > 0 {
		choice = args[0]
	} else {
		for _, p := range packages {
			printf("  %d) %s: %d credits for $%.2f", p.ID, p.Name, p.Credits, p.Price)
		}
		var err error
		if choice, err = getSimpleText(a.reader, "Package", a.out); err != nil {
			return err
		}
	}

	id, err := strconv.Atoi(choice)
	if err != nil {
		return usage("buy")
	}
	var pkg *models.CreditPackage
	for i := range packages {
		if packages[i].ID == id {
			pkg = &packages[i]
		}
	}
	if pkg == nil {
		return fieldError("package", "unknown package "+choice)
	}

	if err := a.credits.Purchase(ctx, models.PurchaseFor(*pkg)); err != nil {
		return err
	}
	printf("Purchased %s. Balance: %d credits", pkg.Name, a.credits.State().Balance)
	return nil
}
