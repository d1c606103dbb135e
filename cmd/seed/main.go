// Command seed loads booking documents from a JSON file into the bookings
// collection and announces each one on the booking events topic.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/trailhead/service-bookings/internal/config"
	"github.com/trailhead/service-bookings/internal/docstore"
	bookingEvents "github.com/trailhead/service-bookings/internal/events"
	"github.com/trailhead/service-bookings/internal/platform/database"
	"github.com/trailhead/service-bookings/internal/platform/kafka"
	"github.com/trailhead/service-bookings/internal/platform/logger"
	"github.com/trailhead/service-bookings/internal/repository"
)

const source = "service-bookings-seed"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet(source, flag.ContinueOnError)
	file := flags.String("file", "bookings.json", "JSON array of booking documents")
	publish := flags.Bool("publish", true, "publish booking.created for every seeded booking")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewNamed(cfg.AppEnv, source)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	docs, err := readDocuments(*file)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := docstore.NewGormStore(db)
	if err := store.AutoMigrate(repository.BookingsCollection); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if err := store.Upsert(ctx, repository.BookingsCollection, docs...); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}
	log.Info("bookings seeded", zap.Int("count", len(docs)))

	if !*publish || len(cfg.KafkaConfig.Brokers) == 0 {
		return nil
	}

	producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = producer.Close() }()

	for _, doc := range docs {
		if err := announce(ctx, producer, doc); err != nil {
			log.Error("failed to publish booking event", zap.String("booking_id", doc.ID), zap.Error(err))
		}
	}
	return nil
}

func readDocuments(path string) ([]docstore.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	docs := make([]docstore.Document, 0, len(items))
	for i, item := range items {
		id, _ := item[docstore.FieldID].(string)
		if id == "" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
		if _, ok := item[docstore.FieldUserID].(string); !ok {
			return nil, fmt.Errorf("document %s has no userId", id)
		}
		delete(item, docstore.FieldID)
		docs = append(docs, docstore.Document{ID: id, Fields: docstore.Fields(item)})
	}
	return docs, nil
}

func announce(ctx context.Context, producer *kafka.Producer, doc docstore.Document) error {
	userID, _ := doc.Fields.String(docstore.FieldUserID)
	ce, err := kafka.NewCloudEvent(source, bookingEvents.BookingCreated, bookingEvents.BookingChangedEvent{
		BookingID: doc.ID,
		UserID:    userID,
	})
	if err != nil {
		return err
	}
	ce.Subject = userID
	return producer.PublishEvent(ctx, bookingEvents.TopicBookingEvents, ce)
}
