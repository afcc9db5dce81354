package handlers

import (
	"context"
	"net/http"
	"time"

	"pondwatch"
	"pondwatch/internal/realtime"
	"pondwatch/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockMonitoring struct {
	snap     service.StatusSnapshot
	snapErr  error
	hours    []pondwatch.HourlyAverage
	hoursErr error
	lastFrom time.Time
	lastTo   time.Time
}

func (m *mockMonitoring) Latest(ctx context.Context) (service.StatusSnapshot, error) {
	return m.snap, m.snapErr
}
func (m *mockMonitoring) HourlyAverages(ctx context.Context, from, to time.Time) ([]pondwatch.HourlyAverage, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.hours, m.hoursErr
}

type mockNotifications struct {
	view    service.NotificationView
	viewErr error
	mutErr  error

	readIDs      []string
	deleteIDs    []string
	readAllCalls int
	clearCalls   int
}

func (m *mockNotifications) List(ctx context.Context) (service.NotificationView, error) {
	return m.view, m.viewErr
}
func (m *mockNotifications) Summary(ctx context.Context) (service.NotificationSummary, error) {
	return m.view.Summary, m.viewErr
}
func (m *mockNotifications) MarkRead(ctx context.Context, id string) error {
	m.readIDs = append(m.readIDs, id)
	return m.mutErr
}
func (m *mockNotifications) MarkAllRead(ctx context.Context) error {
	m.readAllCalls++
	return m.mutErr
}
func (m *mockNotifications) Delete(ctx context.Context, id string) error {
	m.deleteIDs = append(m.deleteIDs, id)
	return m.mutErr
}
func (m *mockNotifications) ClearAll(ctx context.Context) error {
	m.clearCalls++
	return m.mutErr
}

type mockControl struct {
	state    pondwatch.ControlState
	getErr   error
	applyErr error
	lastUpd  service.ControlUpdate
}

func (m *mockControl) Get(ctx context.Context) (pondwatch.ControlState, error) {
	return m.state, m.getErr
}
func (m *mockControl) Apply(ctx context.Context, upd service.ControlUpdate) (pondwatch.ControlState, error) {
	m.lastUpd = upd
	return m.state, m.applyErr
}

type mockSensors struct {
	ingestErr error
	ingested  []pondwatch.SensorReading
}

func (m *mockSensors) Ingest(ctx context.Context, reading pondwatch.SensorReading) error {
	m.ingested = append(m.ingested, reading)
	return m.ingestErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, realtime.NewHub(), nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
