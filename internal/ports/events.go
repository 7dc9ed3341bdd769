package ports

import "context"

// Event kinds emitted by the engine dispatcher and primitive action
// handlers. Severity is carried on the event itself (see
// DomainEvent.Severity) rather than encoded into the type string.
const (
	EventJobStarted   = "job_started"
	EventJobCompleted = "job_completed"

	EventActionStarted = "action_started"
	EventActionSkipped = "action_skipped"

	EventTemplateEntered    = "template_entered"
	EventTemplateExited     = "template_exited"
	EventTemplateSetupBegin = "template_setup_started"
	EventTemplateSetupDone  = "template_setup_completed"
	EventTemplateSkipped    = "template_skipped"

	EventTransactionSent      = "transaction_sent"
	EventTransactionConfirmed = "transaction_confirmed"

	EventVerificationStarted  = "verification_started"
	EventVerificationSubmitted = "verification_submitted"
	EventVerificationCompleted = "verification_completed"
	EventVerificationFailed   = "verification_failed"

	EventOutputStored    = "output_stored"
	EventPrimitiveAction = "primitive_action"
)

// Severity classifies a DomainEvent for filtering/rendering purposes.
type Severity string

const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// DomainEvent represents a significant occurrence within the domain or
// application layer. Events carry structured payloads that downstream
// subscribers can use for logging, UI updates, or integrations.
type DomainEvent interface {
	EventType() string
	Severity() Severity
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous—Publish blocks until all handlers run—ensuring observability
// signals appear before the process exits. Handlers may spawn goroutines for
// async processing if work should continue in the background. Implementations
// must be thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Handlers should avoid
// panicking; failures should be surfaced via returned errors so publishers can
// log diagnostics and continue delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events and release resources.
type Subscription interface {
	Unsubscribe()
}

// Event is the concrete DomainEvent every layer of the engine publishes.
// Most callers construct one with NewEvent rather than implementing
// DomainEvent themselves.
type Event struct {
	Type        string
	Level       Severity
	PayloadData interface{}
}

// NewEvent constructs an Event.
func NewEvent(eventType string, severity Severity, payload interface{}) Event {
	return Event{Type: eventType, Level: severity, PayloadData: payload}
}

func (e Event) EventType() string    { return e.Type }
func (e Event) Severity() Severity   { return e.Level }
func (e Event) Payload() interface{} { return e.PayloadData }
