package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/messaging/kafka"
)

// initKafkaProducer поднимает producer по списку брокеров через запятую.
// Пустой список означает работу без Kafka: события остаются в outbox
// со статусом pending, а ошибка подключения не валит сервер.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if strings.TrimSpace(brokers) == "" {
		logger.Info("kafka не настроена, события накапливаются в outbox")
		return nil, nil
	}

	list := strings.Split(brokers, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}

	producer, err := kafka.NewProducer(list)
	if err != nil {
		logger.WithError(err).Warn("kafka недоступна, сервер продолжает работу без публикации")
		return nil, err
	}

	logger.WithField("brokers", list).Info("kafka producer подключен")
	return producer, nil
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("ошибка при закрытии kafka producer")
	}
}
