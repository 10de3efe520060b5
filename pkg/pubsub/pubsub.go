package pubsub

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, headers map[string]string, body []byte)
	Close()
}

type confluentKafkaPublisher struct {
	logger   *logrus.Logger
	producer *kafka.Producer
}

func PublisherFromConfluentKafkaProducer(logger *logrus.Logger, producer *kafka.Producer) Publisher {
	p := &confluentKafkaPublisher{
		logger:   logger,
		producer: producer,
	}

	go p.watchDeliveryEvents()

	return p
}

func (p *confluentKafkaPublisher) watchDeliveryEvents() {
	for e := range p.producer.Events() {
		m, ok := e.(*kafka.Message)
		if !ok {
			continue
		}

		if m.TopicPartition.Error != nil {
			p.logger.WithFields(logrus.Fields{
				"object": "pubsub",
				"topic":  *m.TopicPartition.Topic,
			}).Error(m.TopicPartition.Error)
		}
	}
}

// Publish is fire and forget; delivery failures are only logged.
func (p *confluentKafkaPublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, body []byte) {
	kafkaHeaders := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:     []byte(key),
		Value:   body,
		Headers: kafkaHeaders,
	}, nil)
	if err != nil {
		p.logger.WithContext(ctx).WithFields(logrus.Fields{
			"object": "pubsub",
			"topic":  topic,
		}).Error(err)
	}
}

func (p *confluentKafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
