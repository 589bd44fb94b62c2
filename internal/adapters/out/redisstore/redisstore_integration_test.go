package redisstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"shipping/internal/adapters/out/redisstore"
	"shipping/internal/core/domain/model/carrier"
	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/core/domain/model/quote"
	"shipping/internal/core/domain/model/shipment"
	"shipping/internal/core/ports"
	"shipping/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisStoreIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	now       time.Time
}

func (suite *RedisStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	host, err := container.Host(ctx)
	suite.Require().NoError(err)
	port, err := container.MappedPort(ctx, "6379")
	suite.Require().NoError(err)

	client, err := redisstore.NewClient(ctx, redisstore.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	suite.Require().NoError(err)
	suite.client = client
}

func (suite *RedisStoreIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushDB(context.Background()).Err())
	suite.now = time.Now().UTC()
}

func (suite *RedisStoreIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.Require().NoError(suite.client.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RedisStoreIntegrationTestSuite) session(ttl time.Duration) *quote.Session {
	addr, err := kernel.NewAddress(kernel.AddressParams{City: "Paris", Country: "FR"})
	suite.Require().NoError(err)
	parcel, err := kernel.NewParcel(10, 10, 10, 1)
	suite.Require().NoError(err)
	req, err := quote.NewRequest(quote.RequestParams{
		From: addr, To: addr, Parcel: parcel, Speed: carrier.Standard, Currency: kernel.MustCurrency("EUR"),
	})
	suite.Require().NoError(err)
	s, err := quote.NewSession(kernel.NewUUID(), req, nil, suite.now, ttl)
	suite.Require().NoError(err)
	return s
}

func (suite *RedisStoreIntegrationTestSuite) TestSessionStore_SaveGetDelete() {
	ctx := context.Background()
	store := redisstore.NewSessionStore(suite.client, func() time.Time { return suite.now })
	s := suite.session(time.Minute)

	suite.Require().NoError(store.Save(ctx, s))

	ttl, err := suite.client.TTL(ctx, "shipping:quote-session:"+s.ID().String()).Result()
	suite.Require().NoError(err)
	suite.InDelta(time.Minute.Seconds(), ttl.Seconds(), 2)

	got, err := store.Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.True(got.ID().IsEqual(s.ID()))
	suite.Equal(-1, got.CheapestIndex())

	suite.Require().NoError(store.Delete(ctx, s.ID()))
	_, err = store.Get(ctx, s.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *RedisStoreIntegrationTestSuite) TestSessionStore_ExpiredSession() {
	ctx := context.Background()
	store := redisstore.NewSessionStore(suite.client, func() time.Time { return suite.now })
	s := suite.session(time.Minute)
	suite.Require().NoError(store.Save(ctx, s))

	suite.now = suite.now.Add(time.Minute)
	_, err := store.Get(ctx, s.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	err = store.Save(ctx, s)
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}

func (suite *RedisStoreIntegrationTestSuite) TestStatusPublisher_Publish() {
	ctx := context.Background()
	publisher := redisstore.NewStatusPublisher(suite.client, "")
	sub := publisher.Subscribe(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	suite.Require().NoError(err)

	id := kernel.NewUUID()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	suite.Require().NoError(publisher.PublishStatusChange(ctx, ports.StatusChange{
		ShipmentID: id, TrackingNumber: "TRK9", From: shipment.InTransit, To: shipment.Delivered, At: at,
	}))

	select {
	case msg := <-sub.Channel():
		suite.Equal(redisstore.DefaultStatusChannel, msg.Channel)
		var got redisstore.StatusMessage
		suite.Require().NoError(json.Unmarshal([]byte(msg.Payload), &got))
		suite.Equal(redisstore.StatusMessage{
			ShipmentID: id.String(), TrackingNumber: "TRK9", From: "in_transit", To: "delivered",
			Timestamp: at.UnixMilli(),
		}, got)
	case <-time.After(5 * time.Second):
		suite.Fail("status change not received")
	}
}

func TestRedisStoreIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreIntegrationTestSuite))
}
