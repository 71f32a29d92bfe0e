package rest

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/game/sight"
	mw "github.com/kasuganosora/hidechase/middleware"
	"go.uber.org/zap"
)

// SightReporter is the read side of a sight sensor. Implemented by
// *world.Sensor.
type SightReporter interface {
	Visible() bool
	Radius() float64
}

// AgentBinding ties an agent's controller to the bridge its sensor reports
// through and the target that sensor watches. Sensor is optional.
type AgentBinding struct {
	Controller *ai.Controller
	Bridge     *sight.Bridge
	Target     ai.Target
	Sensor     SightReporter
}

// SensorView is the sensor's side of an agent view.
type SensorView struct {
	Visible bool    `json:"visible"`
	Radius  float64 `json:"radius"`
}

// AgentView is the JSON shape of one agent.
type AgentView struct {
	ai.Status
	Sensor *SensorView `json:"sensor,omitempty"`
}

func (b AgentBinding) view() AgentView {
	v := AgentView{Status: b.Controller.Status()}
	if b.Sensor != nil {
		v.Sensor = &SensorView{Visible: b.Sensor.Visible(), Radius: b.Sensor.Radius()}
	}
	return v
}

// AgentHandler exposes agent state and lets operators inject sight events.
type AgentHandler struct {
	mu     sync.RWMutex
	agents map[string]AgentBinding
	logger *zap.Logger
}

// NewAgentHandler creates an empty AgentHandler.
func NewAgentHandler(logger *zap.Logger) *AgentHandler {
	return &AgentHandler{agents: make(map[string]AgentBinding), logger: logger}
}

// Add registers an agent under its controller ID.
func (h *AgentHandler) Add(b AgentBinding) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.agents[b.Controller.ID] = b
}

func (h *AgentHandler) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.agents)
}

// ActiveCount returns how many agents are running a cycle.
func (h *AgentHandler) ActiveCount() int {
	n := 0
	for _, v := range h.views() {
		if v.Active {
			n++
		}
	}
	return n
}

func (h *AgentHandler) views() []AgentView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]AgentView, 0, len(h.agents))
	for _, b := range h.agents {
		out = append(out, b.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *AgentHandler) lookup(id string) (AgentBinding, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.agents[id]
	return b, ok
}

// List returns the status of every agent.
// GET /api/agents
func (h *AgentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.views()})
}

// Get returns one agent's status.
// GET /api/agents/:id
func (h *AgentHandler) Get(c *gin.Context) {
	b, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	c.JSON(http.StatusOK, b.view())
}

type sightRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// Sight injects a gained or lost notification as if the agent's sensor
// had produced it.
// POST /api/agents/:id/sight
func (h *AgentHandler) Sight(c *gin.Context) {
	b, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	var req sightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visible is required"})
		return
	}
	if *req.Visible {
		if err := b.Bridge.Gained(b.Target); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	} else {
		b.Bridge.Lost(b.Target)
	}
	mw.RequestLogger(c, h.logger).Info("sight injected",
		zap.String("agent", b.Controller.ID), zap.Bool("visible", *req.Visible))
	c.JSON(http.StatusOK, b.view())
}
