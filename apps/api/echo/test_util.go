package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

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
	inmemdb "github.com/trezcool/kelasi/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "Kelasi",
		SecretKey:                 "secret",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Name: "Kelasi", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Notifications: core.NotificationsConfig{
			PollInterval:   5 * time.Minute,
			DueSoonWindow:  3 * 24 * time.Hour,
			FollowUpMaxAge: 7 * 24 * time.Hour,
		},
	}
}

type testLogger struct {
	std *log.Logger
}

func newTestLogger() core.Logger {
	return &testLogger{std: log.New(log.Writer(), "TEST : ", log.LstdFlags)}
}

func (l testLogger) log(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.log(msg, args) }

// receiptStoreMock keeps receipts in memory.
type receiptStoreMock struct {
	files map[string][]byte
}

func newReceiptStoreMock() *receiptStoreMock {
	return &receiptStoreMock{files: make(map[string][]byte)}
}

func (s *receiptStoreMock) Save(studentID, filename string, r io.Reader) (string, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	path := studentID + "-" + filename
	s.files[path] = content
	return path, nil
}

func (s *receiptStoreMock) Open(path string) (io.ReadCloser, error) {
	content, ok := s.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return ioutil.NopCloser(bytes.NewReader(content)), nil
}

func (s *receiptStoreMock) Remove(path string) error {
	delete(s.files, path)
	return nil
}

type testEnv struct {
	conf     *core.Config
	db       *inmemdb.DB
	receipts *receiptStoreMock

	usrSvc   user.Service
	stdSvc   student.Service
	pmtSvc   payment.Service
	fuSvc    followup.Service
	tskSvc   task.Service
	auditSvc audit.Service
	notifSvc notification.Service
	dashSvc  dashboard.Service

	server Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := testConfig()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)

	db := inmemdb.Open()
	receipts := newReceiptStoreMock()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db))
	usrSvc := user.NewServiceMock(inmemdb.NewUserRepository(db), mailSvc, conf)
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db), auditSvc)
	pmtSvc := payment.NewService(inmemdb.NewPaymentRepository(db), auditSvc, receipts)
	fuSvc := followup.NewService(inmemdb.NewFollowUpRepository(db), auditSvc)
	tskSvc := task.NewService(inmemdb.NewTaskRepository(db), auditSvc)
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db), stdSvc, pmtSvc, fuSvc, mailSvc, conf)
	dashSvc := dashboard.NewService(stdSvc, pmtSvc, notifSvc)

	server := NewServer(&ServerDeps{
		Conf:         conf,
		Logger:       newTestLogger(),
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

	return &testEnv{
		conf:     conf,
		db:       db,
		receipts: receipts,
		usrSvc:   usrSvc,
		stdSvc:   stdSvc,
		pmtSvc:   pmtSvc,
		fuSvc:    fuSvc,
		tskSvc:   tskSvc,
		auditSvc: auditSvc,
		notifSvc: notifSvc,
		dashSvc:  dashSvc,
		server:   server,
	}
}

func (env *testEnv) createUser(t *testing.T, name, email, pwd, role string, active bool) user.User {
	t.Helper()
	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
	})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	if !active {
		isActive := false
		usr, err = env.usrSvc.Update(context.Background(), usr.ID, user.UpdateUser{IsActive: &isActive})
		if err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	return usr
}

func (env *testEnv) createStudent(t *testing.T, name, phone, plan string) student.Student {
	t.Helper()
	std, err := env.stdSvc.Create(context.Background(), student.NewStudent{
		FullName: name,
		Phone:    phone,
		PlanName: plan,
	}, "")
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
