package bus

import "time"

// Event is a single publication on the bus. Kind is a dotted topic such as
// "thread.<application_id>.inserted".
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
