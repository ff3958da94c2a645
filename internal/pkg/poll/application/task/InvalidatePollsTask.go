package task

import (
	"context"
	"encoding/json"
	"time"

	cacheport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/port"
	qport "github.com/ShahiCrafts/civicpulse/internal/infrastructure/queue/port"
	"github.com/ShahiCrafts/civicpulse/internal/infrastructure/realtime"
	pollcache "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/cache"
)

// InvalidatePollsTaskType is the queue task name for retiring poll caches
// after a mutation and nudging connected dashboards to refetch.
const InvalidatePollsTaskType = "polls:invalidate"

// AdminPollsRoom is the well-known hub room admin dashboards join to hear
// about poll changes.
const AdminPollsRoom = "admin:polls"

// InvalidatePollsPayload is the JSON payload transported via the queue.
type InvalidatePollsPayload struct {
	PollID    string `json:"pollId,omitempty"`
	Operation string `json:"operation"` // create | update | delete
}

type pollsChangedFrame struct {
	Type      string `json:"type"`
	PollID    string `json:"pollId,omitempty"`
	Operation string `json:"operation"`
}

// RegisterInvalidatePollsTask binds the invalidation handler to the worker.
// The handler bumps the list version key, drops the detail entry and
// broadcasts a pollsChanged frame to the admin room. Idempotent: re-running
// only bumps the version again.
func RegisterInvalidatePollsTask(srv qport.Server, cache cacheport.Cache, hub *realtime.Hub) {
	srv.Register(InvalidatePollsTaskType, func(ctx context.Context, t qport.Task) error {
		var p InvalidatePollsPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := pollcache.Invalidate(ctx, cache, p.PollID); err != nil {
			return err
		}

		frame := pollsChangedFrame{Type: "pollsChanged", PollID: p.PollID, Operation: p.Operation}
		if payload, err := json.Marshal(frame); err == nil {
			hub.Broadcast(AdminPollsRoom, payload)
		}
		return nil
	})
}
