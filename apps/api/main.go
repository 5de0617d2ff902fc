package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/audit"
	"github.com/trezcool/kelasi/core/dashboard"
	"github.com/trezcool/kelasi/core/followup"
	"github.com/trezcool/kelasi/core/notification"
	"github.com/trezcool/kelasi/core/payment"
	"github.com/trezcool/kelasi/core/student"
	"github.com/trezcool/kelasi/core/task"
	"github.com/trezcool/kelasi/core/user"
	emailsvc "github.com/trezcool/kelasi/services/email"
	logsvc "github.com/trezcool/kelasi/services/logger"
	"github.com/trezcool/kelasi/storage/database"
	sqlxrepos "github.com/trezcool/kelasi/storage/database/sqlx"
	"github.com/trezcool/kelasi/storage/uploads"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	if err := run(conf, logger); err != nil {
		logger.Fatal("main error", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	expvar.NewString("build").Set(conf.Build)
	logger.Info("Application initializing : version " + conf.Build)
	defer logger.Info("main: Completed")

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() {
		logger.Info("main: stopping database support")
		_ = db.Close()
	}()
	if err = database.Migrate(db.DB); err != nil {
		return errors.Wrap(err, "migrating database")
	}

	// set up validators
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	receipts, err := uploads.NewLocalStore(conf)
	if err != nil {
		return errors.Wrap(err, "setting up receipt store")
	}

	auditSvc := audit.NewService(sqlxrepos.NewAuditRepository(db))
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db), auditSvc)
	pmtSvc := payment.NewService(sqlxrepos.NewPaymentRepository(db), auditSvc, receipts)
	fuSvc := followup.NewService(sqlxrepos.NewFollowUpRepository(db), auditSvc)
	tskSvc := task.NewService(sqlxrepos.NewTaskRepository(db), auditSvc)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), stdSvc, pmtSvc, fuSvc, mailSvc, conf)
	dashSvc := dashboard.NewService(stdSvc, pmtSvc, notifSvc)

	// start the notification poller
	poller := notification.NewPoller(notifSvc, logger, conf.Notifications.PollInterval)
	poller.Start()
	defer func() {
		logger.Info("main: stopping notification poller")
		poller.Stop()
	}()

	// start the debug server; /debug/pprof & /debug/vars
	go func() {
		logger.Info("main: debug server listening on " + conf.Server.DebugHost)
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("main: debug server closed", err)
		}
	}()

	// start API server
	app := echoapi.NewServer(&echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		UserSvc:      usrSvc,
		StudentSvc:   stdSvc,
		PaymentSvc:   pmtSvc,
		ReceiptStore: receipts,
		FollowUpSvc:  fuSvc,
		TaskSvc:      tskSvc,
		AuditSvc:     auditSvc,
		NotifSvc:     notifSvc,
		DashboardSvc: dashSvc,
	})
	logger.Info("main: API server listening on " + conf.Server.Address())
	app.Start()

	// blocking main and waiting for shutdown
	select {
	case err := <-app.Errors():
		return errors.Wrap(err, "server error")
	case sig := <-app.ShutdownSignal():
		logger.Info("main: start shutdown", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error("main: could not stop server gracefully", err)
			return errors.Wrap(err, "stopping server")
		}
	}
	return nil
}
