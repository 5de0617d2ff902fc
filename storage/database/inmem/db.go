// Package inmemdb provides map-backed repositories used in tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/kelasi/core/audit"
	"github.com/trezcool/kelasi/core/followup"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/task"
	"github.com/trezcool/kelasi/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	students      map[string]*student.Student
	payments      map[string]*payment.Payment
	followUps     map[string]*followup.FollowUp
	tasks         map[string]*task.Task
	auditEntries  map[string]*audit.Entry
	notifications map[string]*notification.Notification
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		students:      make(map[string]*student.Student),
		payments:      make(map[string]*payment.Payment),
		followUps:     make(map[string]*followup.FollowUp),
		tasks:         make(map[string]*task.Task),
		auditEntries:  make(map[string]*audit.Entry),
		notifications: make(map[string]*notification.Notification),
	}
}
