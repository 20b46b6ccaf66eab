package kafka

import (
	"github.com/IBM/sarama"

	"github.com/shopflow/choreography/internal/messaging"
)

func toProducerMessage(msg messaging.Message) *sarama.ProducerMessage {
	pm := &sarama.ProducerMessage{
		Topic: msg.Topic,
		Value: sarama.ByteEncoder(msg.Value),
	}
	if msg.Key != "" {
		pm.Key = sarama.StringEncoder(msg.Key)
	}
	if len(msg.Headers) > 0 {
		pm.Headers = make([]sarama.RecordHeader, 0, len(msg.Headers))
		for k, v := range msg.Headers {
			pm.Headers = append(pm.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
	}
	return pm
}

func fromConsumerMessage(cm *sarama.ConsumerMessage) messaging.Message {
	msg := messaging.Message{
		Topic: cm.Topic,
		Key:   string(cm.Key),
		Value: cm.Value,
	}
	if len(cm.Headers) > 0 {
		msg.Headers = make(map[string]string, len(cm.Headers))
		for _, h := range cm.Headers {
			if h == nil {
				continue
			}
			msg.Headers[string(h.Key)] = string(h.Value)
		}
	}
	return msg
}
