package cli

import (
	"context"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// defaultStatsDays is the window of "admin stats" without an argument.
const defaultStatsDays = 30

// Admin dispatches the admin subcommands. The service refuses non-admins
// before any request is sent.
func (a *App) Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("admin")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "stats":
		days := defaultStatsDays
		if len(rest) > 0 {
			var err error
			if days, err = idArg("admin", rest); err != nil {
				return err
			}
		}
		return a.adminStats(ctx, days)
	case "users":
		return a.adminUsers(ctx)
	case "promote", "demote":
		id, err := idArg("admin", rest)
		if err != nil {
			return err
		}
		u, err := a.admin.SetAdmin(ctx, id, sub == "promote")
		if err != nil {
			return err
		}
		printf("%s is admin: %t", u.Username, u.IsAdmin)
		return nil
	case "deluser":
		id, err := idArg("admin", rest)
		if err != nil {
			return err
		}
		answer, err := getSimpleText(a.reader, "Delete this user? (y/n)", a.out)
		if err != nil {
			return err
		}
		if !isYes(answer) {
			return nil
		}
		if err := a.admin.DeleteUser(ctx, id); err != nil {
			return err
		}
		printf("User #%d deleted.", id)
		return nil
	case "transactions":
		return a.adminTransactions(ctx)
	case "refund":
		id, err := idArg("admin", rest)
		if err != nil {
			return err
		}
		reason, err := getSimpleText(a.reader, "Reason", a.out)
		if err != nil {
			return err
		}
		if err := a.admin.Refund(ctx, id, reason); err != nil {
			return err
		}
		printf("Transaction #%d refunded.", id)
		return nil
	case "gateways":
		return a.adminGateways(ctx)
	case "addgateway":
		return a.adminAddGateway(ctx)
	case "toggle":
		id, err := idArg("admin", rest)
		if err != nil {
			return err
		}
		g, err := a.admin.ToggleGateway(ctx, id)
		if err != nil {
			return err
		}
		printf("Gateway %s active: %t", g.Name, g.IsActive)
		return nil
	case "delgateway":
		id, err := idArg("admin", rest)
		if err != nil {
			return err
		}
		if err := a.admin.DeleteGateway(ctx, id); err != nil {
			return err
		}
		printf("Gateway #%d deleted.", id)
		return nil
	}
	return usage("admin")
}

func (a *App) adminStats(ctx context.Context, days int) error {
	st, err := a.admin.Stats(ctx, days)
	if err != nil {
		return err
	}
	printf("Last %d days", days)
	printf("  Users: %d (%d active)", st.TotalUsers, st.ActiveUsers)
	printf("  Credits purchased: %d, revenue $%.2f", st.TotalCreditsPurchased, st.TotalRevenue)
	printf("  Meetings: %d (%d completed)", st.TotalMeetings, st.CompletedMeetings)
	printf("  Average rating: %.1f", st.AverageRating)
	return nil
}

func (a *App) adminUsers(ctx context.Context) error {
	users, err := a.admin.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		flags := ""
		if u.IsAdmin {
			flags += " admin"
		}
		if u.IsVerified {
			flags += " verified"
		}
		printf("#%d %s <%s> %d credits%s", u.ID, u.Username, u.Email, u.CreditBalance, flags)
	}
	return nil
}

func (a *App) adminTransactions(ctx context.Context) error {
	txs, err := a.admin.Transactions(ctx)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		printf("#%d %s %s", tx.ID, tx.UserName, views.TransactionLine(tx))
	}
	return nil
}

func (a *App) adminGateways(ctx context.Context) error {
	gws, err := a.admin.Gateways(ctx)
	if err != nil {
		return err
	}
	if len(gws) == 0 {
		printlnFn("No payment gateways.")
	}
	for _, g := range gws {
		printf("#%d %s (%s) active: %t", g.ID, g.Name, g.GatewayType, g.IsActive)
	}
	return nil
}

func (a *App) adminAddGateway(ctx context.Context) error {
	var g models.PaymentGateway
	var err error
	if g.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if g.GatewayType, err = getSimpleText(a.reader, "Type (e.g. stripe, paypal)", a.out); err != nil {
		return err
	}
	if g.APIKey, err = getSimpleText(a.reader, "API key", a.out); err != nil {
		return err
	}
	secret, err := getPassword("Secret key", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)
	g.SecretKey = string(secret)
	active, err := getSimpleText(a.reader, "Active? (y/n) [y]", a.out)
	if err != nil {
		return err
	}
	g.IsActive = !isNo(active)

	saved, err := a.admin.SaveGateway(ctx, g)
	if err != nil {
		return err
	}
	printf("Gateway #%d saved.", saved.ID)
	return nil
}
