package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teayouth/portal/core"
	"github.com/teayouth/portal/core/achievement"
	"github.com/teayouth/portal/core/auth"
	"github.com/teayouth/portal/core/cooperation"
	"github.com/teayouth/portal/core/course"
	"github.com/teayouth/portal/core/resource"
	"github.com/teayouth/portal/core/school"
	"github.com/teayouth/portal/core/user"
	emailsvc "github.com/teayouth/portal/services/email"
	dummydb "github.com/teayouth/portal/storage/database/dummy"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:   true,
		AppName:    "TeaYouth",
		SecretKey:  "secret",
		AdminEmail: "admin@test.cd",
		Server: core.ServerConfig{
			Addr:                      "localhost:8000",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Storage: core.StorageConfig{
			Endpoint:           "https://oss.example.com",
			Bucket:             "portal",
			SecretKey:          "storage-secret",
			URLExpirationDelta: time.Hour,
			PremiumRoles:       []string{"admin:"},
		},
	}
}

type testApp struct {
	server *Server
	conf   *core.Config

	authSvc *auth.Service
	usrSvc  *user.Service
	schSvc  *school.Service
	crsSvc  *course.Service
	resSvc  *resource.Service
	achSvc  *achievement.Service
	coopSvc *cooperation.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}

	conf := newTestConfig()
	usrSvc := user.NewService(dummydb.NewUserRepository(db))
	authSvc := auth.NewService(auth.NewAuthority(conf), usrSvc)
	signer := resource.NewSigner(conf)

	app := &testApp{
		conf:    conf,
		authSvc: authSvc,
		usrSvc:  usrSvc,
		schSvc:  school.NewService(dummydb.NewSchoolRepository(db)),
		crsSvc:  course.NewService(dummydb.NewCourseRepository(db)),
		resSvc:  resource.NewService(dummydb.NewResourceRepository(db), resource.NewGate(signer, conf)),
		achSvc:  achievement.NewService(dummydb.NewAchievementRepository(db)),
		coopSvc: cooperation.NewService(dummydb.NewApplicationRepository(db), emailsvc.NewConsoleServiceMock(conf), conf),
	}
	app.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		DisableReqLogs: true,
		AuthSvc:        authSvc,
		UserSvc:        usrSvc,
		SchoolSvc:      app.schSvc,
		CourseSvc:      app.crsSvc,
		ResourceSvc:    app.resSvc,
		AchievementSvc: app.achSvc,
		CooperationSvc: app.coopSvc,
	})
	return app
}

func (a *testApp) createUser(t *testing.T, name, email, pwd, schoolID string, roles []string) user.User {
	t.Helper()
	usr, err := a.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           email,
		SchoolID:        schoolID,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return usr
}

func (a *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := a.authSvc.Authority().Issue(auth.Principal{
		ID:       usr.ID,
		Email:    usr.Email,
		SchoolID: usr.SchoolID,
		Roles:    usr.Roles,
	})
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
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

type httpErr struct {
	Error string `json:"error"`
}
