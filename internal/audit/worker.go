package audit

import "context"

// Worker consumes audit events from a channel and persists them. It keeps
// event emission off the request path; the pipeline pushes into the inbox and
// moves on.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// InboxStore adapts a channel to the Store interface so emitters hand events
// to the worker instead of the backing store.
type InboxStore struct {
	inbox chan<- Event
}

func NewInboxStore(inbox chan<- Event) *InboxStore {
	return &InboxStore{inbox: inbox}
}

func (s *InboxStore) Append(ctx context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
