package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Me(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error)
}

type UserAPI interface {
	List(ctx context.Context, q models.UserQuery) ([]models.User, error)
	Get(ctx context.Context, id int) (models.User, error)
	AddSkill(ctx context.Context, req models.SkillRequest) (models.Skill, error)
	UpdateSkill(ctx context.Context, id int, req models.SkillRequest) (models.Skill, error)
	DeleteSkill(ctx context.Context, id int) error
	Availability(ctx context.Context, userID int) ([]models.Availability, error)
	AddAvailability(ctx context.Context, req models.AvailabilityRequest) (models.Availability, error)
	UpdateAvailability(ctx context.Context, id int, req models.AvailabilityRequest) (models.Availability, error)
	DeleteAvailability(ctx context.Context, id int) error
}

type CategoryAPI interface {
	List(ctx context.Context) ([]models.Category, error)
}

type CreditAPI interface {
	Balance(ctx context.Context) (models.Balance, error)
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Purchase(ctx context.Context, req models.PurchaseRequest) error
}

type MeetingAPI interface {
	List(ctx context.Context, q models.MeetingQuery) ([]models.Meeting, error)
	Get(ctx context.Context, id int) (models.Meeting, error)
	Create(ctx context.Context, req models.CreateMeetingRequest) (models.Meeting, error)
	UpdateStatus(ctx context.Context, id int, status models.MeetingStatus) (models.Meeting, error)
	Reviews(ctx context.Context, q models.ReviewQuery) ([]models.Review, error)
	CreateReview(ctx context.Context, req models.ReviewRequest) (models.Review, error)
}

type MessagingAPI interface {
	Messages(ctx context.Context, userID int) ([]models.Message, error)
	Send(ctx context.Context, req models.SendMessageRequest) (models.Message, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, senderID int) error
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int) error
	MarkAllNotificationsRead(ctx context.Context) error
}

type AdminAPI interface {
	Stats(ctx context.Context, days int) (models.AdminStats, error)
	Users(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Refund(ctx context.Context, req models.RefundRequest) error
	Gateways(ctx context.Context) ([]models.PaymentGateway, error)
	CreateGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error)
	UpdateGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error)
	DeleteGateway(ctx context.Context, id int) error
	ToggleGateway(ctx context.Context, id int) (models.PaymentGateway, error)
}

// API groups the endpoint namespaces over one Client.
type API struct {
	Client *Client

	Auth       AuthAPI
	Users      UserAPI
	Categories CategoryAPI
	Credits    CreditAPI
	Meetings   MeetingAPI
	Messaging  MessagingAPI
	Admin      AdminAPI
}

func NewAPI(c *Client) *API {
	return &API{
		Client:     c,
		Auth:       authAPI{c},
		Users:      userAPI{c},
		Categories: categoryAPI{c},
		Credits:    creditAPI{c},
		Meetings:   meetingAPI{c},
		Messaging:  messagingAPI{c},
		Admin:      adminAPI{c},
	}
}

func idPath(format string, id int) string {
	return fmt.Sprintf(format, id)
}

type authAPI struct{ c *Client }

func (a authAPI) Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error) {
	var pair models.TokenPair
	err := a.c.Post(ctx, "/auth/jwt/create/", creds, &pair)
	return pair, err
}

func (a authAPI) Refresh(ctx context.Context, refresh string) (string, error) {
	var pair models.TokenPair
	if err := a.c.Post(ctx, "/auth/jwt/refresh/", models.RefreshRequest{Refresh: refresh}, &pair); err != nil {
		return "", err
	}
	return pair.Access, nil
}

func (a authAPI) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := a.c.Post(ctx, "/auth/users/", req, &u)
	return u, err
}

func (a authAPI) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := a.c.Get(ctx, "/users/me/", nil, &u)
	return u, err
}

func (a authAPI) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var u models.User
	err := a.c.Patch(ctx, "/users/update_profile/", upd, &u)
	return u, err
}

type userAPI struct{ c *Client }

func (a userAPI) List(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	var query url.Values
	if q.Skill != "" {
		query = url.Values{"skill": {q.Skill}}
	}
	var users []models.User
	err := a.c.Get(ctx, "/users/", query, &users)
	return users, err
}

func (a userAPI) Get(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := a.c.Get(ctx, idPath("/users/%d/", id), nil, &u)
	return u, err
}

func (a userAPI) AddSkill(ctx context.Context, req models.SkillRequest) (models.Skill, error) {
	var s models.Skill
	err := a.c.Post(ctx, "/user-skills/", req, &s)
	return s, err
}

func (a userAPI) UpdateSkill(ctx context.Context, id int, req models.SkillRequest) (models.Skill, error) {
	var s models.Skill
	err := a.c.Patch(ctx, idPath("/user-skills/%d/", id), req, &s)
	return s, err
}

func (a userAPI) DeleteSkill(ctx context.Context, id int) error {
	return a.c.Delete(ctx, idPath("/user-skills/%d/", id))
}

func (a userAPI) Availability(ctx context.Context, userID int) ([]models.Availability, error) {
	var out []models.Availability
	err := a.c.Get(ctx, "/user-availability/", url.Values{"user_id": {strconv.Itoa(userID)}}, &out)
	return out, err
}

func (a userAPI) AddAvailability(ctx context.Context, req models.AvailabilityRequest) (models.Availability, error) {
	var out models.Availability
	err := a.c.Post(ctx, "/user-availability/", req, &out)
	return out, err
}

func (a userAPI) UpdateAvailability(ctx context.Context, id int, req models.AvailabilityRequest) (models.Availability, error) {
	var out models.Availability
	err := a.c.Patch(ctx, idPath("/user-availability/%d/", id), req, &out)
	return out, err
}

func (a userAPI) DeleteAvailability(ctx context.Context, id int) error {
	return a.c.Delete(ctx, idPath("/user-availability/%d/", id))
}

type categoryAPI struct{ c *Client }

func (a categoryAPI) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := a.c.Get(ctx, "/categories/", nil, &out)
	return out, err
}

type creditAPI struct{ c *Client }

func (a creditAPI) Balance(ctx context.Context) (models.Balance, error) {
	var b models.Balance
	err := a.c.Get(ctx, "/credits/balance/", nil, &b)
	return b, err
}

func (a creditAPI) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	err := a.c.Get(ctx, "/credit-transactions/", nil, &out)
	return out, err
}

func (a creditAPI) Purchase(ctx context.Context, req models.PurchaseRequest) error {
	return a.c.Post(ctx, "/payments/purchase_credits/", req, nil)
}

type meetingAPI struct{ c *Client }

func (a meetingAPI) List(ctx context.Context, q models.MeetingQuery) ([]models.Meeting, error) {
	var out []models.Meeting
	err := a.c.Get(ctx, "/meetings/", q.Values(), &out)
	return out, err
}

func (a meetingAPI) Get(ctx context.Context, id int) (models.Meeting, error) {
	var m models.Meeting
	err := a.c.Get(ctx, idPath("/meetings/%d/", id), nil, &m)
	return m, err
}

func (a meetingAPI) Create(ctx context.Context, req models.CreateMeetingRequest) (models.Meeting, error) {
	var m models.Meeting
	err := a.c.Post(ctx, "/meetings/", req, &m)
	return m, err
}

func (a meetingAPI) UpdateStatus(ctx context.Context, id int, status models.MeetingStatus) (models.Meeting, error) {
	var m models.Meeting
	err := a.c.Patch(ctx, idPath("/meetings/%d/update_status/", id), models.StatusUpdate{Status: status}, &m)
	return m, err
}

func (a meetingAPI) Reviews(ctx context.Context, q models.ReviewQuery) ([]models.Review, error) {
	var out []models.Review
	err := a.c.Get(ctx, "/reviews/", q.Values(), &out)
	return out, err
}

func (a meetingAPI) CreateReview(ctx context.Context, req models.ReviewRequest) (models.Review, error) {
	var r models.Review
	err := a.c.Post(ctx, "/reviews/", req, &r)
	return r, err
}

type messagingAPI struct{ c *Client }

func (a messagingAPI) Messages(ctx context.Context, userID int) ([]models.Message, error) {
	var out []models.Message
	err := a.c.Get(ctx, "/messages/", models.ConversationQuery(userID), &out)
	return out, err
}

func (a messagingAPI) Send(ctx context.Context, req models.SendMessageRequest) (models.Message, error) {
	var m models.Message
	err := a.c.Post(ctx, "/messages/", req, &m)
	return m, err
}

func (a messagingAPI) MarkRead(ctx context.Context, id int) error {
	return a.c.Patch(ctx, idPath("/messages/%d/mark_read/", id), nil, nil)
}

func (a messagingAPI) MarkAllRead(ctx context.Context, senderID int) error {
	return a.c.Patch(ctx, "/messages/mark_all_read/", models.MarkAllReadRequest{SenderID: senderID}, nil)
}

func (a messagingAPI) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := a.c.Get(ctx, "/notifications/", nil, &out)
	return out, err
}

func (a messagingAPI) MarkNotificationRead(ctx context.Context, id int) error {
	return a.c.Patch(ctx, idPath("/notifications/%d/mark_read/", id), nil, nil)
}

func (a messagingAPI) MarkAllNotificationsRead(ctx context.Context) error {
	return a.c.Patch(ctx, "/notifications/mark_all_read/", nil, nil)
}

type adminAPI struct{ c *Client }

func (a adminAPI) Stats(ctx context.Context, days int) (models.AdminStats, error) {
	var query url.Values
	if days > 0 {
		query = url.Values{"days": {strconv.Itoa(days)}}
	}
	var s models.AdminStats
	err := a.c.Get(ctx, "/admin/stats/", query, &s)
	return s, err
}

func (a adminAPI) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := a.c.Get(ctx, "/admin/users/", nil, &out)
	return out, err
}

func (a adminAPI) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	var out models.User
	err := a.c.Put(ctx, idPath("/admin/users/%d/", u.ID), u, &out)
	return out, err
}

func (a adminAPI) DeleteUser(ctx context.Context, id int) error {
	return a.c.Delete(ctx, idPath("/admin/users/%d/", id))
}

func (a adminAPI) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	err := a.c.Get(ctx, "/admin/transactions/", nil, &out)
	return out, err
}

func (a adminAPI) Refund(ctx context.Context, req models.RefundRequest) error {
	return a.c.Post(ctx, "/admin/transactions/refund/", req, nil)
}

func (a adminAPI) Gateways(ctx context.Context) ([]models.PaymentGateway, error) {
	var out []models.PaymentGateway
	err := a.c.Get(ctx, "/admin/payment-gateways/", nil, &out)
	return out, err
}

func (a adminAPI) CreateGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error) {
	var out models.PaymentGateway
	err := a.c.Post(ctx, "/admin/payment-gateways/", g, &out)
	return out, err
}

func (a adminAPI) UpdateGateway(ctx context.Context, g models.PaymentGateway) (models.PaymentGateway, error) {
	var out models.PaymentGateway
	err := a.c.Put(ctx, idPath("/admin/payment-gateways/%d/", g.ID), g, &out)
	return out, err
}

func (a adminAPI) DeleteGateway(ctx context.Context, id int) error {
	return a.c.Delete(ctx, idPath("/admin/payment-gateways/%d/", id))
}

func (a adminAPI) ToggleGateway(ctx context.Context, id int) (models.PaymentGateway, error) {
	var out models.PaymentGateway
	err := a.c.Post(ctx, idPath("/admin/payment-gateways/%d/toggle_active/", id), struct{}{}, &out)
	return out, err
}
