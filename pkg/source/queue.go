package source

import (
	"context"
	"strings"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/consumer"
	"github.com/traffgo/traffgo/pkg/mwm"
	"github.com/traffgo/traffgo/pkg/redis_client"
	"github.com/traffgo/traffgo/pkg/traff"
	"github.com/traffgo/traffgo/pkg/traffic"
)

// FeedQueueName is the redis queue pushed TraFF feed documents arrive on.
const FeedQueueName = "traffgo-queue-traff-feed"

const (
	numFeedConsumers = 2
	feedBatchSize    = 50
)

// QueueSource consumes TraFF feed documents pushed onto a Redis queue by an
// upstream broker. It is push-based: polling is never needed and the
// subscription only gates whether deliveries are processed.
//
// Re-deliveries are common with queues, so messages already seen with the
// same update time are dropped before they reach the host.
type QueueSource struct {
	base

	seenCache *cache.Cache[string]
}

func NewQueueSource(host Host) *QueueSource {
	return &QueueSource{
		base: base{host: host},
	}
}

func (s *QueueSource) Name() string {
	return "queue:" + FeedQueueName
}

// StartConsumers opens the feed queue and runs the background consumers.
// redis_client.Connect must have been called first.
func (s *QueueSource) StartConsumers() error {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(90*time.Minute))
	s.seenCache = cache.New[string](redisStore)

	redisConsumer := consumer.RedisConsumer{
		QueueName:       FeedQueueName,
		NumberConsumers: numFeedConsumers,
		BatchSize:       feedBatchSize,
		Timeout:         2 * time.Second,
		Consumer:        &feedBatchConsumer{source: s},
	}
	return redisConsumer.Setup()
}

func (s *QueueSource) SubscribeOrChangeSubscription(mwms []mwm.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the broker pushes everything; the filter only marks us subscribed
	s.subscriptionID = FeedQueueName
}

func (s *QueueSource) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptionID = ""
}

func (s *QueueSource) IsPollNeeded() bool {
	return false
}

func (s *QueueSource) Poll() {}

// PublishFeed puts a TraFF feed document onto the feed queue for the
// consumers to pick up. redis_client.Connect must have been called first.
func PublishFeed(document string) error {
	queue, err := redis_client.QueueConnection.OpenQueue(FeedQueueName)
	if err != nil {
		return err
	}
	return queue.Publish(document)
}

type feedBatchConsumer struct {
	source *QueueSource
}

func (consumer *feedBatchConsumer) Consume(batch rmq.Deliveries) {
	source := consumer.source

	if !source.IsSubscribed() {
		if ackErrors := batch.Ack(); len(ackErrors) > 0 {
			for _, err := range ackErrors {
				log.Error().Err(err).Msg("Failed to ack traff feed delivery")
			}
		}
		return
	}

	for _, payload := range batch.Payloads() {
		feed, err := traff.ParseFeed(strings.NewReader(payload))
		if err != nil {
			log.Warn().Err(err).Msg("Discarding undecodable traff feed delivery")
			source.setAvailability(traffic.TransportError)
			continue
		}

		feed = source.dropSeenMessages(feed)
		if len(feed) == 0 {
			continue
		}
		source.onFeedReceived(feed, 0)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack traff feed delivery")
		}
	}
}

func (s *QueueSource) dropSeenMessages(feed traff.Feed) traff.Feed {
	ctx := context.Background()
	result := feed[:0]
	for _, message := range feed {
		updateTime := traff.FormatIsoTime(message.UpdateTime)
		if seen, err := s.seenCache.Get(ctx, "traff-seen-"+message.ID); err == nil && seen == updateTime {
			continue
		}
		if err := s.seenCache.Set(ctx, "traff-seen-"+message.ID, updateTime); err != nil {
			log.Error().Err(err).Msg("Failed to record seen traff message")
		}
		result = append(result, message)
	}
	return result
}
