package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

// fakeAuthAPI реализует client.AuthAPI и запоминает последние аргументы.
type fakeAuthAPI struct {
	mu sync.Mutex

	LoginRet   models.TokenPair
	LoginErr   error
	RefreshRet string
	RefreshErr error
	MeRet      models.User
	MeErrs     []error // consumed in order, then nil
	RegErr     error
	UpdateRet  models.User
	UpdateErr  error

	LoginCalls   int
	MeCalls      int
	RefreshCalls int
	RegCalls     int

	LastCreds   models.Credentials
	LastRefresh string
	LastUpdate  models.ProfileUpdate
}

func (f *fakeAuthAPI) Login(_ context.Context, creds models.Credentials) (models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastCreds = creds
	return f.LoginRet, f.LoginErr
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refresh string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++
	f.LastRefresh = refresh
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeAuthAPI) Register(context.Context, models.RegisterRequest) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegCalls++
	return models.User{}, f.RegErr
}

func (f *fakeAuthAPI) Me(context.Context) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MeCalls++
	if len(f.MeErrs) > 0 {
		err := f.MeErrs[0]
		f.MeErrs = f.MeErrs[1:]
		if err != nil {
			return models.User{}, err
		}
	}
	return f.MeRet, nil
}

func (f *fakeAuthAPI) UpdateProfile(_ context.Context, upd models.ProfileUpdate) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUpdate = upd
	return f.UpdateRet, f.UpdateErr
}

type fakeUploader struct {
	URL string
	Err error

	LastKey   string
	LastType  string
	LastBytes []byte
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, data []byte) (string, error) {
	f.LastKey, f.LastType, f.LastBytes = key, contentType, data
	return f.URL, f.Err
}

type fakeCreditAPI struct {
	BalanceRet  models.Balance
	BalanceErr  error
	TxRet       []models.Transaction
	TxErr       error
	PurchaseErr error

	PurchaseCalls int
	BalanceCalls  int
	LastPurchase  models.PurchaseRequest
}

func (f *fakeCreditAPI) Balance(context.Context) (models.Balance, error) {
	f.BalanceCalls++
	return f.BalanceRet, f.BalanceErr
}

func (f *fakeCreditAPI) Transactions(context.Context) ([]models.Transaction, error) {
	return f.TxRet, f.TxErr
}

func (f *fakeCreditAPI) Purchase(_ context.Context, req models.PurchaseRequest) error {
	f.PurchaseCalls++
	f.LastPurchase = req
	return f.PurchaseErr
}

type fakeMessagingAPI struct {
	MessagesRet []models.Message
	MessagesErr error
	NotesRet    []models.Notification
	MarkErr     error

	MarkReadCalls    []int
	MarkAllCalls     []int
	MarkNoteCalls    []int
	MarkAllNoteCalls int
	SendCalls        []models.SendMessageRequest
	LastConversation int
}

func (f *fakeMessagingAPI) Messages(_ context.Context, userID int) ([]models.Message, error) {
	f.LastConversation = userID
	return append([]models.Message(nil), f.MessagesRet...), f.MessagesErr
}

func (f *fakeMessagingAPI) Send(_ context.Context, req models.SendMessageRequest) (models.Message, error) {
	f.SendCalls = append(f.SendCalls, req)
	return models.Message{}, nil
}

func (f *fakeMessagingAPI) MarkRead(_ context.Context, id int) error {
	f.MarkReadCalls = append(f.MarkReadCalls, id)
	return f.MarkErr
}

func (f *fakeMessagingAPI) MarkAllRead(_ context.Context, senderID int) error {
	f.MarkAllCalls = append(f.MarkAllCalls, senderID)
	return f.MarkErr
}

func (f *fakeMessagingAPI) Notifications(context.Context) ([]models.Notification, error) {
	return append([]models.Notification(nil), f.NotesRet...), nil
}

func (f *fakeMessagingAPI) MarkNotificationRead(_ context.Context, id int) error {
	f.MarkNoteCalls = append(f.MarkNoteCalls, id)
	return f.MarkErr
}

func (f *fakeMessagingAPI) MarkAllNotificationsRead(context.Context) error {
	f.MarkAllNoteCalls++
	return f.MarkErr
}

type fakeAdminAPI struct {
	calls []string

	UsersRet   []models.User
	LastUser   models.User
	LastRefund models.RefundRequest
	LastGW     models.PaymentGateway
}

func (f *fakeAdminAPI) Stats(context.Context, int) (models.AdminStats, error) {
	f.calls = append(f.calls, "stats")
	return models.AdminStats{TotalUsers: 3}, nil
}

func (f *fakeAdminAPI) Users(context.Context) ([]models.User, error) {
	f.calls = append(f.calls, "users")
	return f.UsersRet, nil
}

func (f *fakeAdminAPI) UpdateUser(_ context.Context, u models.User) (models.User, error) {
	f.calls = append(f.calls, "update_user")
	f.LastUser = u
	return u, nil
}

func (f *fakeAdminAPI) DeleteUser(context.Context, int) error {
	f.calls = append(f.calls, "delete_user")
	return nil
}

func (f *fakeAdminAPI) Transactions(context.Context) ([]models.Transaction, error) {
	f.calls = append(f.calls, "transactions")
	return nil, nil
}

func (f *fakeAdminAPI) Refund(_ context.Context, req models.RefundRequest) error {
	f.calls = append(f.calls, "refund")
	f.LastRefund = req
	return nil
}

func (f *fakeAdminAPI) Gateways(context.Context) ([]models.PaymentGateway, error) {
	f.calls = append(f.calls, "gateways")
	return nil, nil
}

func (f *fakeAdminAPI) CreateGateway(_ context.Context, g models.PaymentGateway) (models.PaymentGateway, error) {
	f.calls = append(f.calls, "create_gateway")
	f.LastGW = g
	g.ID = 99
	return g, nil
}

func (f *fakeAdminAPI) UpdateGateway(_ context.Context, g models.PaymentGateway) (models.PaymentGateway, error) {
	f.calls = append(f.calls, "update_gateway")
	f.LastGW = g
	return g, nil
}

func (f *fakeAdminAPI) DeleteGateway(context.Context, int) error {
	f.calls = append(f.calls, "delete_gateway")
	return nil
}

func (f *fakeAdminAPI) ToggleGateway(_ context.Context, id int) (models.PaymentGateway, error) {
	f.calls = append(f.calls, "toggle_gateway")
	return models.PaymentGateway{ID: id}, nil
}

type fakeUserSource struct {
	user models.User
	ok   bool
}

func (f fakeUserSource) CurrentUser() (models.User, bool) { return f.user, f.ok }
