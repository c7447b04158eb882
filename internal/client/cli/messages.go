package cli

import (
	"context"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
)

// Messages opens a conversation, marking what was received there as read.
// Without an id it reloads the conversation that is already open.
func (a *App) Messages(ctx context.Context, args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	other := a.messaging.State().CounterpartyID
	if len(args) > 0 || other == 0 {
		if other, err = idArg("messages", args); err != nil {
			return err
		}
	}

	if err := a.messaging.OpenConversation(ctx, other, u.ID); err != nil {
		return err
	}
	msgs := a.messaging.State().Messages
	if len(msgs) == 0 {
		printlnFn("No messages yet.")
		return nil
	}
	for _, m := range msgs {
		printlnFn(views.MessageLine(m, u.ID))
	}
	return nil
}

func (a *App) Send(ctx context.Context, args []string) error {
	to, err := idArg("send", args)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}
	if err := a.messaging.Send(ctx, models.SendMessageRequest{Receiver: to, Content: content}); err != nil {
		return err
	}
	printlnFn("Message sent.")
	return nil
}

func (a *App) Read(ctx context.Context, args []string) error {
	id, err := idArg("read", args)
	if err != nil {
		return err
	}
	return a.messaging.MarkRead(ctx, id)
}

func (a *App) ReadAll(ctx context.Context, args []string) error {
	sender, err := idArg("readall", args)
	if err != nil {
		return err
	}
	if err := a.messaging.MarkAllRead(ctx, sender); err != nil {
		return err
	}
	printlnFn("Conversation marked as read.")
	return nil
}

func (a *App) Notifications(ctx context.Context, _ []string) error {
	if err := a.messaging.FetchNotifications(ctx); err != nil {
		return err
	}
	notes := a.messaging.State().Notifications
	if len(notes) == 0 {
		printlnFn("No notifications.")
		return nil
	}
	for _, n := range notes {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		printf("%s#%d [%s] %s", mark, n.ID, n.CreatedAt.Local().Format(inputTime), n.Content)
	}
	return nil
}

func (a *App) ReadNote(ctx context.Context, args []string) error {
	id, err := idArg("readnote", args)
	if err != nil {
		return err
	}
	return a.messaging.MarkNotificationRead(ctx, id)
}

func (a *App) ReadNotes(ctx context.Context, _ []string) error {
	if err := a.messaging.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	printlnFn("All notifications marked as read.")
	return nil
}
