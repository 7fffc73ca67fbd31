package simsource

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/locchain/pkg/location/behavior"
	"github.com/ib-77/locchain/pkg/location/events"
)

// Answer is how the simulated user responds to a prompt.
type Answer int

const (
	// AnswerSilent never responds; the test drives the hub itself.
	AnswerSilent Answer = iota
	AnswerGrant
	AnswerDeny
)

// Prompt records one request the engine made of the host.
type Prompt struct {
	Token       uuid.UUID
	Permissions []string
	Settings    *behavior.SettingsRequest
}

// Host plays the application side: it holds permission grants, answers
// prompts according to its script and forwards the answers into the hub.
type Host struct {
	mu          sync.Mutex
	hub         *events.Hub
	source      *Source
	granted     map[string]bool
	permissions Answer
	settings    Answer
	delay       time.Duration
	prompts     []Prompt
	asked       chan Prompt
}

var (
	_ behavior.PermissionChecker = (*Host)(nil)
	_ behavior.PermissionCaller  = (*Host)(nil)
	_ behavior.ForResultCaller   = (*Host)(nil)
)

// NewHost builds a host answering into hub. When the user accepts the
// settings prompt the requested providers are enabled on source.
func NewHost(hub *events.Hub, source *Source) *Host {
	return &Host{
		hub:     hub,
		source:  source,
		granted: make(map[string]bool),
		asked:   make(chan Prompt, 64),
	}
}

func (h *Host) Grant(permissions ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range permissions {
		h.granted[p] = true
	}
}

func (h *Host) Granted(permission string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.granted[permission]
}

// AnswerPermissions scripts the reply to permission prompts.
func (h *Host) AnswerPermissions(a Answer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.permissions = a
}

// AnswerSettings scripts the reply to settings prompts.
func (h *Host) AnswerSettings(a Answer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings = a
}

// AnswerAfter delays every scripted answer.
func (h *Host) AnswerAfter(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delay = d
}

// Asked yields every prompt as it is made.
func (h *Host) Asked() <-chan Prompt {
	return h.asked
}

func (h *Host) Prompts() []Prompt {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Prompt(nil), h.prompts...)
}

func (h *Host) record(p Prompt) (Answer, time.Duration) {
	h.mu.Lock()
	h.prompts = append(h.prompts, p)
	a, d := h.permissions, h.delay
	if p.Settings != nil {
		a = h.settings
	}
	h.mu.Unlock()

	select {
	case h.asked <- p:
	default:
	}
	return a, d
}

func (h *Host) RequestPermissions(_ context.Context, token uuid.UUID, permissions []string) error {
	perms := append([]string(nil), permissions...)
	answer, delay := h.record(Prompt{Token: token, Permissions: perms})
	if answer == AnswerSilent {
		return nil
	}

	go func() {
		time.Sleep(delay)
		grants := make([]bool, len(perms))
		if answer == AnswerGrant {
			h.Grant(perms...)
			for i := range grants {
				grants[i] = true
			}
		}
		h.hub.OnPermissionResult(token, perms, grants)
	}()
	return nil
}

func (h *Host) StartForResult(_ context.Context, token uuid.UUID, req behavior.SettingsRequest) error {
	answer, delay := h.record(Prompt{Token: token, Settings: &req})
	if answer == AnswerSilent {
		return nil
	}

	go func() {
		time.Sleep(delay)
		code := events.ResultCanceled
		if answer == AnswerGrant {
			if h.source != nil && len(req.Providers) > 0 {
				h.source.SetEnabled(req.Providers[0], true)
			}
			code = events.ResultOK
		}
		payload := map[string]string{"action": req.Action}
		if req.Resolution != "" {
			payload["resolution"] = req.Resolution
		}
		h.hub.OnActivityResult(token, code, payload)
	}()
	return nil
}
