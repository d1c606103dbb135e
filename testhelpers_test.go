//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trailhead/service-bookings/internal/docstore"
	bookingEvents "github.com/trailhead/service-bookings/internal/events"
	"github.com/trailhead/service-bookings/internal/platform/database"
	"github.com/trailhead/service-bookings/internal/platform/kafka"
	"github.com/trailhead/service-bookings/internal/presentation"
	"github.com/trailhead/service-bookings/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Store   *docstore.GormStore
	Cleanup func()
}

// setupPostgres starts a PostgreSQL testcontainer, applies the migrations and
// returns a connected store.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_bookings",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_bookings",
		SSLMode:  "disable",
	}

	// Poll until gorm can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, zap.NewNop())
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", zap.NewNop()))

	return &testInfra{
		DB:    db,
		Store: docstore.NewGormStore(db),
		Cleanup: func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				t.Logf("failed to terminate PostgreSQL container: %v", err)
			}
		},
	}
}

// setupKafka starts a Kafka testcontainer with the booking events topic.
func setupKafka(t *testing.T) ([]string, func()) {
	t.Helper()
	ctx := context.Background()

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, bookingEvents.TopicBookingEvents)

	return brokers, func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}
}

// seedBookings writes n bookings for userID ending one day apart, starting
// at from. Ids are prefixed so feeds can be told apart in assertions.
func seedBookings(t *testing.T, store *docstore.GormStore, userID, prefix string, from time.Time, step time.Duration, n int) {
	t.Helper()
	docs := make([]docstore.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, docstore.Document{
			ID: fmt.Sprintf("%s-%02d", prefix, i),
			Fields: docstore.Fields{
				"userId":      userID,
				"tourId":      "tour-" + prefix,
				"tourName":    "Tour " + prefix,
				"status":      "confirmed",
				"totalAmount": 420.0,
				"currency":    "NZD",
				"startDate":   from.Add(time.Duration(i)*step - 72*time.Hour).Format(time.RFC3339),
				"endDate":     from.Add(time.Duration(i) * step).Format(time.RFC3339),
				"createdAt":   from.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
			},
		})
	}
	require.NoError(t, store.Upsert(context.Background(), repository.BookingsCollection, docs...))
}

// newSessions returns a session store whose view-models are never loaded.
func newSessions() *presentation.SessionStore {
	return presentation.NewSessionStore(func() *presentation.BookingsViewModel {
		return presentation.NewBookingsViewModel(nil, nil, nil, 0, zap.NewNop())
	})
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

func testGroupID(name string) string {
	return fmt.Sprintf("test-%s-%s", name, uuid.New().String()[:8])
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
