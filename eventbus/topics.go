package eventbus

// 전역 토픽 선언: 기능별 기본 토픽 이름을 관리합니다.

var (
	TopicEvaluationEvents = NewTopic("model-eval.evaluation.events")
	TopicPromptEvents     = NewTopic("model-eval.prompt.events")
)

var AllTopics = []Topic{
	TopicEvaluationEvents,
	TopicPromptEvents,
}
