package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

func printf(format string, args ...any) {
	printlnFn(fmt.Sprintf(format, args...))
}

// execIface is the command surface the REPL needs. App satisfies it; tests
// provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Exec(ctx context.Context, name string, args []string) error
}

type command struct {
	name  string
	usage string
	// auth commands need a signed-in user and get one token refresh on 401.
	auth bool
	// safe commands only read, so they are re-run after a refresh.
	safe bool
	run  func(a *App, ctx context.Context, args []string) error
}

func commandTable() []command {
	return []command{
		{name: "register", usage: "register", run: (*App).Register},
		{name: "login", usage: "login", run: (*App).Login},
		{name: "logout", usage: "logout", auth: true, run: (*App).Logout},

		{name: "dashboard", usage: "dashboard", auth: true, safe: true, run: (*App).Dashboard},

		{name: "experts", usage: "experts [-c category id] [skill]", auth: true, safe: true, run: (*App).Experts},
		{name: "categories", usage: "categories", auth: true, safe: true, run: (*App).Categories},
		{name: "expert", usage: "expert <id>", auth: true, safe: true, run: (*App).Expert},

		{name: "meetings", usage: "meetings [upcoming|pending|past|cancelled]", auth: true, safe: true, run: (*App).Meetings},
		{name: "meeting", usage: "meeting <id>", auth: true, safe: true, run: (*App).Meeting},
		{name: "accept", usage: "accept <id>", auth: true, run: (*App).Accept},
		{name: "cancel", usage: "cancel <id>", auth: true, run: (*App).Cancel},
		{name: "complete", usage: "complete <id>", auth: true, run: (*App).Complete},
		{name: "review", usage: "review <id>", auth: true, run: (*App).Review},
		{name: "book", usage: "book <expert id>", auth: true, run: (*App).Book},
		{name: "join", usage: "join <id>", auth: true, run: (*App).Join},

		{name: "messages", usage: "messages [user id]", auth: true, safe: true, run: (*App).Messages},
		{name: "send", usage: "send <user id>", auth: true, run: (*App).Send},
		{name: "read", usage: "read <message id>", auth: true, run: (*App).Read},
		{name: "readall", usage: "readall <user id>", auth: true, run: (*App).ReadAll},
		{name: "notifications", usage: "notifications", auth: true, safe: true, run: (*App).Notifications},
		{name: "readnote", usage: "readnote <id>", auth: true, run: (*App).ReadNote},
		{name: "readnotes", usage: "readnotes", auth: true, run: (*App).ReadNotes},

		{name: "credits", usage: "credits", auth: true, safe: true, run: (*App).Credits},
		{name: "buy", usage: "buy [package id]", auth: true, run: (*App).Buy},

		{name: "profile", usage: "profile", auth: true, safe: true, run: (*App).Profile},
		{name: "editprofile", usage: "editprofile", auth: true, run: (*App).EditProfile},
		{name: "avatar", usage: "avatar <path>", auth: true, run: (*App).Avatar},
		{name: "addskill", usage: "addskill", auth: true, run: (*App).AddSkill},
		{name: "delskill", usage: "delskill <id>", auth: true, run: (*App).DeleteSkill},
		{name: "addavail", usage: "addavail", auth: true, run: (*App).AddAvailability},
		{name: "delavail", usage: "delavail <id>", auth: true, run: (*App).DeleteAvailability},

		{name: "admin", usage: "admin <stats|users|promote|demote|deluser|transactions|refund|gateways|addgateway|toggle|delgateway>", auth: true, run: (*App).Admin},
		{name: "stats", usage: "stats", run: (*App).Stats},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commandTable() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// usage returns a usageError carrying the command's usage line.
func usage(name string) error {
	c, ok := lookupCommand(name)
	if !ok {
		return &usageError{usage: name}
	}
	return &usageError{usage: c.usage}
}

// Exec runs one command. A 401 from an authenticated command triggers a single
// token refresh; read-only commands are then retried.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	cmd, ok := lookupCommand(name)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if !cmd.auth {
		return cmd.run(a, ctx, args)
	}

	if !a.isLoggedIn() {
		return errLoginRequired
	}
	if err := a.auth.EnsureFresh(ctx); err != nil {
		a.log.Warn(ctx, "token refresh failed", "error", err)
	}

	err := cmd.run(a, ctx, args)
	if !errors.Is(err, common.ErrAuthentication) {
		return err
	}
	if rerr := a.auth.Refresh(ctx); rerr != nil {
		if !a.isLoggedIn() {
			a.disconnectRealtime()
		}
		return err
	}
	if !cmd.safe {
		return errRetry
	}
	return cmd.run(a, ctx, args)
}

func printHelp(loggedIn bool) {
	var names []string
	for _, c := range commandTable() {
		if c.auth == loggedIn || c.name == "stats" {
			names = append(names, c.name)
		}
	}
	sort.Strings(names)
	names = append(names, "help", "exit")
	printlnFn("Available commands: " + strings.Join(names, ", "))
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit" or "quit", or when ctx ends. Command errors
// are rendered and never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ec %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		name, args := parts[0], parts[1:]
		switch name {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printHelp(a.isLoggedIn())
		default:
			if cerr := a.Exec(ctx, name, args); cerr != nil {
				for _, l := range describeError(cerr) {
					printlnFn(l)
				}
			}
		}

		if err != nil || ctx.Err() != nil {
			return
		}
	}
}
