package views

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

func WelcomeBanner(u models.User) string {
	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("Welcome back, %s!", name)
}

// TransactionLine renders one history row, e.g. "+300 purchased  Standard package".
func TransactionLine(tx models.Transaction) string {
	sign := "+"
	if !tx.Type.Credit() {
		sign = "-"
	}
	amount := tx.Amount
	if amount < 0 {
		amount = -amount
	}

	line := fmt.Sprintf("%s%d %s", sign, amount, tx.Type)
	if tx.Description != "" {
		line += "  " + tx.Description
	}
	if !tx.CreatedAt.IsZero() {
		line = tx.CreatedAt.Format("2006-01-02 15:04") + "  " + line
	}
	return line
}
