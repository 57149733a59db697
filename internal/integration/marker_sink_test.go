//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/blue-plaque-map/internal/adapter/kafka"
	"github.com/couchcryptid/blue-plaque-map/internal/config"
	"github.com/couchcryptid/blue-plaque-map/internal/domain"
	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
	"github.com/couchcryptid/blue-plaque-map/internal/pipeline"
)

const testMarkerTopic = "test-plaque-markers"

// TestPopulatePublishesMarkers runs a population pass with the Kafka sink and
// reads the placed markers back from the topic.
func TestPopulatePublishesMarkers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testMarkerTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaMarkerTopic: testMarkerTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	populator := pipeline.New(domain.PreciseConverter{}, domain.NewPopupFormatter(domain.DefaultSearchLocality),
		discardLogger(), metrics, pipeline.WithSink(writer))

	host, err := mapview.NewHost("map", mapview.DefaultOptions())
	require.NoError(t, err)

	tally := populator.Populate(ctx, []domain.Plaque{
		{Title: "Arthur Ransome", Easting: 429870, Northing: 435780},
		{Title: "No coordinates"},
		{Title: "Louis Le Prince", Easting: 430010, Northing: 433600},
	}, host)
	require.Equal(t, domain.Tally{Valid: 2, Invalid: 1}, tally)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testMarkerTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })

	placed := host.Markers()
	for i := range placed {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read marker %d", i)

		var got domain.Marker
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, placed[i].ID, string(msg.Key))
		assert.Equal(t, placed[i].Title, got.Title)
		assert.InDelta(t, placed[i].Position.Lat, got.Position.Lat, 1e-12)
		assert.InDelta(t, placed[i].Position.Lng, got.Position.Lng, 1e-12)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, placed[i].Title, headers["plaque_title"])
	}
}
