package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	fail     map[string]error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Exec(_ context.Context, name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	if name == "login" {
		f.loggedIn = true
	}
	return f.fail[name]
}

func TestRunREPL_DispatchesUntilExit(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{fail: map[string]error{"meetings": common.ErrNetwork}}

	r := readerFromLines("help", "", "login", "meetings past", "join 12", "exit", "dashboard")
	runREPL(context.Background(), exec, func() string { return "(ada online)" }, r)

	assert.Equal(t, []string{"login", "meetings past", "join 12"}, exec.calls)
	assert.True(t, out.contains("ec (ada online)> "))
	assert.True(t, out.contains("Network problem, try again."))
	assert.True(t, out.contains("Available commands: login, register, stats, help, exit"))
	assert.Equal(t, "Bye!", out.all()[len(out.all())-1])
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}

	r := readerFromLines("credits")
	runREPL(context.Background(), exec, func() string { return "" }, r)
	assert.Equal(t, []string{"credits"}, exec.calls)
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufioReader("credits\nmessages 2"))
	assert.Equal(t, []string{"credits", "messages 2"}, exec.calls)
}

func TestExec_Gate(t *testing.T) {
	h := newHarness(t)

	require.ErrorIs(t, h.app.Exec(context.Background(), "dashboard", nil), errLoginRequired)
	require.ErrorIs(t, h.app.Exec(context.Background(), "frobnicate", nil), errUnknownCommand)
	assert.Zero(t, h.credits.fetchCalls)
}

func TestExec_RefreshOnUnauthorized(t *testing.T) {
	unauthorized := fmt.Errorf("balance error: %w", common.ErrAuthentication)

	t.Run("read-only command is retried", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(ada)
		h.credits.fetchErrs = []error{unauthorized}

		require.NoError(t, h.app.Exec(context.Background(), "credits", nil))
		assert.Equal(t, 1, h.auth.refreshCalls)
		assert.Equal(t, 2, h.credits.fetchCalls)
	})

	t.Run("mutation is not replayed", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(ada)
		h.credits.buyErrs = []error{unauthorized}

		err := h.app.Exec(context.Background(), "buy", []string{"1"})
		require.ErrorIs(t, err, errRetry)
		assert.Len(t, h.credits.purchases, 1)
		assert.Equal(t, 1, h.auth.refreshCalls)
	})

	t.Run("failed refresh signs out", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(ada)
		h.auth.refreshErr = errors.New("refresh error")
		h.credits.fetchErrs = []error{unauthorized}

		err := h.app.Exec(context.Background(), "credits", nil)
		require.ErrorIs(t, err, common.ErrAuthentication)
		assert.False(t, h.app.isLoggedIn())
		assert.Equal(t, []string{"Your session has expired, please log in again."}, describeError(err))
	})
}

func TestBuy(t *testing.T) {
	h := newHarness(t, "2")
	h.signIn(ada)

	require.NoError(t, h.app.Exec(context.Background(), "buy", nil))
	assert.Equal(t, []models.PurchaseRequest{{PackageID: 2, Amount: 300, Price: 25}}, h.credits.purchases)
	assert.True(t, h.out.contains("Purchased Standard. Balance: 300 credits"))

	var verr *common.ValidationError
	require.ErrorAs(t, h.app.Exec(context.Background(), "buy", []string{"9"}), &verr)
	assert.Len(t, h.credits.purchases, 1)
}
