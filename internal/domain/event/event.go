package event

import "context"

// Name identifies a broadcast topic understood by the dashboard.
type Name string

const (
	CensusUpdate     Name = "census_update"
	OutpassUpdate    Name = "outpass_update"
	ConfigUpdate     Name = "config_update"
	AutoBlockTrigger Name = "auto_block_trigger"
	LateReturnBlock  Name = "late_return_block"
	UnverifiedReturn Name = "unverified_return"
	MessTokenUpdate  Name = "mess_token_update"
)

// Event is an outbound notification produced by a rule or operation.
// Operations return events instead of sending them; the caller dispatches.
type Event struct {
	Name    Name           `json:"event"`
	Payload map[string]any `json:"data"`
}

func New(name Name, payload map[string]any) Event {
	return Event{Name: name, Payload: payload}
}

// Dispatcher delivers events to observers on a best-effort basis.
// Implementations must not block the caller on slow or absent observers.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...Event)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, events ...Event)

func (f DispatcherFunc) Dispatch(ctx context.Context, events ...Event) {
	f(ctx, events...)
}

// Discard drops every event.
var Discard Dispatcher = DispatcherFunc(func(context.Context, ...Event) {})

// Multi fans events out to each dispatcher in order.
func Multi(dispatchers ...Dispatcher) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, events ...Event) {
		for _, d := range dispatchers {
			d.Dispatch(ctx, events...)
		}
	})
}
