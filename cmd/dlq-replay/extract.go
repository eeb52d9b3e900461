package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/foodtuck/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodtuck/internal/service/outbox"
)

const (
	kindConsumer = "consumer"
	kindOutbox   = "outbox"
)

type replayMessage struct {
	kind    string
	topic   string
	key     string
	value   []byte
	headers []sarama.RecordHeader
}

// extractReplayMessage распознаёт два формата DLQ:
// kafka.DeadLetter от consumer'а каталога и Envelope с outbox.DeadLetter от outbox worker'а.
// ok == false — сообщение не относится ни к одному формату.
func extractReplayMessage(msg *sarama.ConsumerMessage, cfg config) (replayMessage, bool, error) {
	var letter kafka.DeadLetter
	if err := json.Unmarshal(msg.Value, &letter); err == nil && letter.OriginalValue != "" {
		return replayMessage{
			kind:  kindConsumer,
			topic: firstNonEmpty(letter.OriginalTopic, cfg.catalogTopic),
			key:   letter.OriginalKey,
			value: []byte(letter.OriginalValue),
		}, true, nil
	}

	var envelope kafka.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil || len(envelope.Payload) == 0 || string(envelope.Payload) == "null" {
		return replayMessage{}, false, nil
	}

	var dead outbox.DeadLetter
	if err := json.Unmarshal(envelope.Payload, &dead); err != nil {
		return replayMessage{}, false, fmt.Errorf("decode outbox dead letter: %w", err)
	}
	if len(dead.Payload) == 0 {
		return replayMessage{}, false, fmt.Errorf("outbox dead letter does not contain original event payload")
	}

	replay := kafka.Envelope{
		ID:            firstNonEmpty(dead.OutboxID, envelope.ID),
		AggregateType: firstNonEmpty(dead.AggregateType, envelope.AggregateType),
		AggregateID:   firstNonEmpty(dead.AggregateID, envelope.AggregateID),
		EventType:     firstNonEmpty(dead.EventType, envelope.EventType),
		Payload:       dead.Payload,
		PublishedAt:   time.Now().UTC(),
	}
	encoded, err := json.Marshal(replay)
	if err != nil {
		return replayMessage{}, false, fmt.Errorf("encode replay envelope: %w", err)
	}

	return replayMessage{
		kind:  kindOutbox,
		topic: cfg.cartTopic,
		key:   firstNonEmpty(replay.AggregateID, replay.ID),
		value: encoded,
		headers: []sarama.RecordHeader{{
			Key:   []byte(kafka.HeaderEventType),
			Value: []byte(replay.EventType),
		}},
	}, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
