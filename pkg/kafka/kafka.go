package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/culturepass/cp-stock/config"
)

// NewProducer builds a confluent producer from the application config. A
// broker that is unreachable at startup only surfaces on the first produce.
func NewProducer() *kafka.Producer {
	c := config.Get()

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": c.Kafka.BootstrapServers,
		"client.id":         c.Kafka.ClientID,
		"acks":              "all",
	})
	if err != nil {
		panic(err)
	}

	return producer
}
