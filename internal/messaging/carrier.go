package messaging

import (
	"slices"

	"github.com/segmentio/kafka-go"
)

// HeaderEventType names the header carrying the domain event type.
const HeaderEventType = "event_type"

// HeaderCarrier adapts Kafka message headers to propagation.TextMapCarrier.
type HeaderCarrier struct {
	headers *[]kafka.Header
}

func NewHeaderCarrier(msg *kafka.Message) HeaderCarrier {
	return HeaderCarrier{headers: &msg.Headers}
}

func (c HeaderCarrier) Get(key string) string {
	i := c.index(key)
	if i < 0 {
		return ""
	}
	return string((*c.headers)[i].Value)
}

func (c HeaderCarrier) Set(key, value string) {
	if i := c.index(key); i >= 0 {
		(*c.headers)[i].Value = []byte(value)
		return
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c HeaderCarrier) index(key string) int {
	return slices.IndexFunc(*c.headers, func(h kafka.Header) bool { return h.Key == key })
}
