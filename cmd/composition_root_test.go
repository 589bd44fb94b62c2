package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpin "shipping/internal/adapters/in/http"
	postgres_adapter "shipping/internal/adapters/out/postgres"
	"shipping/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRootTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	root      *CompositionRoot
	echo      *echo.Echo
}

func (suite *CompositionRootTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(postgres_adapter.DriverPostgres, dsn, postgres_adapter.PoolSettings{MaxOpenConns: 8})
	suite.Require().NoError(err)
	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.db = db

	cfg := Config{
		HTTPPort:           "0",
		DBDriver:           postgres_adapter.DriverPostgres,
		DBDSN:              dsn,
		Provider:           "simulator",
		ProviderTimeout:    5 * time.Second,
		SimulatorNodeID:    7,
		QuoteSessionTTL:    30 * time.Minute,
		QuotePurgeSchedule: "0 * * * * *",
		JWTSecret:          "e2e-secret",
		WebhookToken:       "e2e-hook",
	}
	suite.Require().NoError(cfg.Validate())

	root, err := NewCompositionRoot(ctx, cfg, db, zap.NewNop())
	suite.Require().NoError(err)
	suite.root = root

	openapi, err := httpin.LoadOpenAPI(ctx)
	suite.Require().NoError(err)
	server, err := root.CreateHTTPServer(openapi)
	suite.Require().NoError(err)

	suite.echo = echo.New()
	suite.Require().NoError(server.Register(suite.echo))
}

func (suite *CompositionRootTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE shipments, shipment_activities, carrier_configs, quote_sessions").Error
	suite.Require().NoError(err)
	suite.Require().NoError(suite.root.EnsureCarrierDefaults(context.Background()))
}

func (suite *CompositionRootTestSuite) TearDownSuite() {
	if suite.root != nil {
		suite.Require().NoError(suite.root.Close())
	}
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *CompositionRootTestSuite) call(method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *CompositionRootTestSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (suite *CompositionRootTestSuite) adminHeaders() map[string]string {
	token, err := suite.root.Authorizer().Issue("ops@example.com", []string{ports.RoleAdmin}, time.Hour)
	suite.Require().NoError(err)
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

var e2eAddress = map[string]any{"line1": "1 Main St", "city": "Berlin", "postcode": "10115", "country": "DE"}

func (suite *CompositionRootTestSuite) TestQuoteToDelivery() {
	quoteRec := suite.call(http.MethodPost, "/api/v1/quotes", map[string]any{
		"from":     map[string]any{"country": "DE", "city": "Berlin", "postcode": "10115"},
		"to":       map[string]any{"country": "FR", "city": "Paris", "postcode": "75001"},
		"weightKg": 2.5,
		"dimsCm":   map[string]any{"l": 30, "w": 20, "h": 10},
		"speed":    "standard",
	}, nil)
	suite.Require().Equal(http.StatusOK, quoteRec.Code, quoteRec.Body.String())

	var quoteResp httpin.QuoteResponse
	suite.decode(quoteRec, &quoteResp)
	suite.Require().NotEmpty(quoteResp.Options)
	suite.Require().NotNil(quoteResp.CheapestIndex)

	getQuote := suite.call(http.MethodGet, "/api/v1/quotes/"+quoteResp.SessionID, nil, nil)
	suite.Require().Equal(http.StatusOK, getQuote.Code, getQuote.Body.String())

	createRec := suite.call(http.MethodPost, "/api/v1/shipments", map[string]any{
		"to":             map[string]any{"line1": "2 Rue de Rivoli", "city": "Paris", "postcode": "75001", "country": "FR"},
		"from":           e2eAddress,
		"orderId":        "ord-1",
		"customerEmail":  "buyer@example.com",
		"quoteSessionId": quoteResp.SessionID,
	}, nil)
	suite.Require().Equal(http.StatusCreated, createRec.Code, createRec.Body.String())

	var created httpin.CreateShipmentResponse
	suite.decode(createRec, &created)
	suite.Require().NotEmpty(created.Rates)
	suite.Equal("rated", created.Status)
	suite.Equal("USD", created.Rates[0].Currency)

	// the quote session is consumed by the shipment
	suite.Equal(http.StatusNotFound, suite.call(http.MethodGet, "/api/v1/quotes/"+quoteResp.SessionID, nil, nil).Code)

	rateID := created.Rates[0].ID
	labelRec := suite.call(http.MethodPost, "/api/v1/shipments/"+created.ShipmentID+"/label",
		map[string]any{"rateId": rateID}, nil)
	suite.Require().Equal(http.StatusOK, labelRec.Code, labelRec.Body.String())

	var label httpin.LabelResponse
	suite.decode(labelRec, &label)
	suite.False(label.AlreadyPurchased)
	suite.Require().NotEmpty(label.TrackingNumber)
	suite.NotEmpty(label.LabelURL)

	againRec := suite.call(http.MethodPost, "/api/v1/labels",
		map[string]any{"shipmentId": created.ShipmentID, "rateId": rateID}, nil)
	suite.Require().Equal(http.StatusOK, againRec.Code, againRec.Body.String())
	var again httpin.LabelResponse
	suite.decode(againRec, &again)
	suite.True(again.AlreadyPurchased)
	suite.Equal(label.TrackingNumber, again.TrackingNumber)

	hookRec := suite.call(http.MethodPost, "/webhooks/simulator",
		map[string]any{"trackingNumber": label.TrackingNumber, "status": "Delivered"},
		map[string]string{httpin.WebhookTokenHeader: "e2e-hook"})
	suite.Require().Equal(http.StatusOK, hookRec.Code, hookRec.Body.String())

	getRec := suite.call(http.MethodGet, "/api/v1/shipments/"+created.ShipmentID, nil, nil)
	suite.Require().Equal(http.StatusOK, getRec.Code, getRec.Body.String())

	var shipment httpin.ShipmentResponse
	suite.decode(getRec, &shipment)
	suite.Equal("delivered", shipment.Status)
	suite.Equal(label.TrackingNumber, shipment.TrackingNumber)
	suite.Equal(label.LabelURL, shipment.LabelURL)
	suite.Equal("ord-1", shipment.OrderID)
	suite.GreaterOrEqual(len(shipment.Activity), 3)

	cancelRec := suite.call(http.MethodPost, "/api/v1/shipments/"+created.ShipmentID+"/cancel",
		map[string]any{"reason": "too late"}, suite.adminHeaders())
	suite.Equal(http.StatusConflict, cancelRec.Code, cancelRec.Body.String())

	summaryRec := suite.call(http.MethodGet, "/api/v1/admin/shipments/summary", nil, suite.adminHeaders())
	suite.Require().Equal(http.StatusOK, summaryRec.Code, summaryRec.Body.String())
	var summary httpin.SummaryResponse
	suite.decode(summaryRec, &summary)
	suite.Equal(int64(1), summary.Counts["delivered"])
	suite.Len(summary.Recent, 1)
}

func (suite *CompositionRootTestSuite) TestWebhookRejectsWrongToken() {
	rec := suite.call(http.MethodPost, "/webhooks/simulator",
		map[string]any{"trackingNumber": "SIMX", "status": "Delivered"},
		map[string]string{httpin.WebhookTokenHeader: "nope"})
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *CompositionRootTestSuite) TestCarrierSettingsRequireAdmin() {
	suite.Equal(http.StatusUnauthorized, suite.call(http.MethodGet, "/api/v1/admin/carriers", nil, nil).Code)

	rec := suite.call(http.MethodGet, "/api/v1/admin/carriers", nil, suite.adminHeaders())
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var list httpin.CarrierList
	suite.decode(rec, &list)
	suite.Len(list.Carriers, 4)
}

func (suite *CompositionRootTestSuite) TestJobManagerRunsPurge() {
	manager := suite.root.CreateJobManager()
	suite.Require().NoError(manager.StartAll())
	manager.StopAll()
}

func TestCompositionRootTestSuite(t *testing.T) {
	suite.Run(t, new(CompositionRootTestSuite))
}
