package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/config"
	"github.com/couchcryptid/weather-station-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces committed measurements to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured measurement topic.
// Every message carries runID so consumers can group one ingestion run.
func NewWriter(cfg *config.Config, runID string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, runID: runID, logger: logger}
}

// Publish serializes a station batch and writes it in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, measurements []domain.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}
	publishedAt := domain.Now()
	msgs := make([]kafkago.Message, len(measurements))
	for i := range measurements {
		msg, err := serializeToMessage(measurements[i], w.runID, publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d measurements: %w", len(msgs), err)
	}
	w.logger.Debug("measurements published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// message is the wire form of a measurement.
type message struct {
	City           string    `json:"city"`
	WeatherStation string    `json:"weather_station"`
	Celsius        *float64  `json:"celsius"`
	Fahrenheit     *float64  `json:"fahrenheit,omitempty"`
	MeasuredAt     time.Time `json:"measured_at_ts"`
}

// serializeToMessage marshals a measurement into a Kafka message keyed by station.
func serializeToMessage(m domain.Measurement, runID string, publishedAt time.Time) (kafkago.Message, error) {
	body := message{
		City:           m.City,
		WeatherStation: m.WeatherStation,
		Celsius:        m.Celsius,
		MeasuredAt:     m.MeasuredAt.UTC(),
	}
	if f, ok := m.Fahrenheit(); ok {
		body.Fahrenheit = &f
	}
	data, err := json.Marshal(body)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize measurement: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.WeatherStation),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "weather_station", Value: []byte(m.WeatherStation)},
			{Key: "run_id", Value: []byte(runID)},
			{Key: "published_at", Value: []byte(publishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
