package eventbus

import (
	"context"
	"encoding/json"
)

// Topic은 토픽의 기본 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher 인터페이스는 이벤트 발행의 추상화를 정의합니다.
// 발행 실패는 호출자가 기록만 하고 요청 처리에는 영향을 주지 않습니다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NoopBus는 브로커가 설정되지 않았을 때 사용하는 구현체입니다.
type NoopBus struct{}

func (NoopBus) Publish(context.Context, string, Event) error { return nil }
func (NoopBus) Close()                                       {}
