package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to the interactive input helpers.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register collects the account form and creates the account. Provider
// roles are also asked for the public profile. It does not log in.
func (a *App) Register(ctx context.Context, _ []string) error {
	var req models.RegisterRequest
	var err error

	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Username", &req.Username},
		{"Email", &req.Email},
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
	} {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	pw, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	again, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)
	req.Password, req.RePassword = string(pw), string(again)

	role, err := getSimpleText(a.reader, "Role (consumer, provider, both) [consumer]", a.out)
	if err != nil {
		return err
	}
	req.Role = models.RoleConsumer
	if role != "" {
		req.Role = models.Role(strings.ToLower(role))
	}

	if req.NeedsProviderProfile() {
		if req.Headline, err = getSimpleText(a.reader, "Headline", a.out); err != nil {
			return err
		}
		if req.Bio, err = getMultiline(a.reader, "Bio", a.out); err != nil {
			return err
		}
		rate, err := getSimpleText(a.reader, "Hourly rate in credits [0]", a.out)
		if err != nil {
			return err
		}
		if req.HourlyRate, err = parseInt("hourly_rate", rate, 0); err != nil {
			return err
		}
		hire, err := getSimpleText(a.reader, "Available for hire? (y/n) [y]", a.out)
		if err != nil {
			return err
		}
		req.AvailableForHire = !isNo(hire)
	}

	if err := a.auth.Register(ctx, req); err != nil {
		return err
	}
	printlnFn("Account created. Use 'login' to sign in.")
	return nil
}

// Login authenticates, greets the user and opens the realtime channel.
func (a *App) Login(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, models.Credentials{Username: username, Password: string(password)}); err != nil {
		return err
	}

	u, _ := a.auth.CurrentUser()
	printlnFn(views.WelcomeBanner(u))
	a.connectRealtime(ctx)
	return nil
}

// Logout leaves any call, drops the socket and forgets the tokens.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()
	if s != nil {
		s.Close()
	}
	a.disconnectRealtime()
	a.auth.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}

func isNo(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "n" || s == "no"
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}
