package events

import (
	"log/slog"

	"github.com/google/uuid"
)

// PermissionResult answers a permission request.
type PermissionResult struct {
	RequestToken uuid.UUID
	Permissions  []string
	Grants       []bool
}

func (e PermissionResult) Token() uuid.UUID { return e.RequestToken }

// Granted maps each reported permission to its grant. A permission reported
// without a matching grant entry counts as denied.
func (e PermissionResult) Granted() map[string]bool {
	out := make(map[string]bool, len(e.Permissions))
	for i, p := range e.Permissions {
		out[p] = i < len(e.Grants) && e.Grants[i]
	}
	return out
}

// Activity result codes.
const (
	ResultCanceled = 0
	ResultOK       = -1
)

// ActivityResult answers a for-result request such as opening settings.
type ActivityResult struct {
	RequestToken uuid.UUID
	ResultCode   int
	Payload      map[string]string
}

func (e ActivityResult) Token() uuid.UUID { return e.RequestToken }

// Hub owns the two host event streams. The host forwards every real event
// exactly once through OnPermissionResult and OnActivityResult.
type Hub struct {
	Permissions *Dispatcher[PermissionResult]
	Activities  *Dispatcher[ActivityResult]
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Permissions: NewDispatcher[PermissionResult]("permission-result", logger),
		Activities:  NewDispatcher[ActivityResult]("activity-result", logger),
	}
}

func (h *Hub) OnPermissionResult(token uuid.UUID, permissions []string, grants []bool) int {
	return h.Permissions.Deliver(PermissionResult{
		RequestToken: token,
		Permissions:  append([]string(nil), permissions...),
		Grants:       append([]bool(nil), grants...),
	})
}

func (h *Hub) OnActivityResult(token uuid.UUID, resultCode int, payload map[string]string) int {
	return h.Activities.Deliver(ActivityResult{
		RequestToken: token,
		ResultCode:   resultCode,
		Payload:      payload,
	})
}
