package ledger

// Op classifies a change notification.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes a committed mutation. Collection is the persisted
// collection key ("accounts", "transactions", ...); ID is the entity
// touched. Events fire only after the change has been persisted.
type Event struct {
	Collection string
	Op         Op
	ID         string
}

// Subscribe registers fn for change notifications. Callbacks run
// synchronously on the mutating goroutine; subscribers must not call
// back into the store.
func (s *Store) Subscribe(fn func(Event)) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) emit(collection string, op Op, id string) {
	for _, fn := range s.subscribers {
		fn(Event{Collection: collection, Op: op, ID: id})
	}
}
