package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kelasi/core/notification"
)

type notifRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notifRepository{db: db}
}

func (repo *notifRepository) QueryNotifications(_ context.Context, unreadOnly bool) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]notification.Notification, 0, len(repo.db.notifications))
	for _, n := range repo.db.notifications {
		if unreadOnly && n.Read {
			continue
		}
		notifs = append(notifs, *n)
	}
	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].Date.Equal(notifs[j].Date) {
			return notifs[i].ID < notifs[j].ID
		}
		return notifs[i].Date.Before(notifs[j].Date)
	})
	return notifs, nil
}

func (repo *notifRepository) ReplaceNotifications(_ context.Context, notifs []notification.Notification) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.notifications = make(map[string]*notification.Notification, len(notifs))
	for i := range notifs {
		n := notifs[i]
		repo.db.notifications[n.ID] = &n
	}
	return nil
}

func (repo *notifRepository) SetNotificationRead(_ context.Context, id string, read bool) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.Read = read
	return *n, nil
}
