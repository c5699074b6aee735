// Package handlers provides the HTTP handlers of the mutant API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/server/response"
	"github.com/mutantautomate/mutant/internal/server/sse"
	"github.com/mutantautomate/mutant/internal/server/updates"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
	"github.com/mutantautomate/mutant/pkg/logging"
)

// maxBodySize bounds request bodies. Structures never travel inbound.
const maxBodySize = 1 << 20

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client         mutant.Client
	broker         *updates.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(
	client mutant.Client,
	broker *updates.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		client:         client,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      startTime,
	}
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		response.BadRequest(w, "Invalid request body", err.Error())
		return false
	}
	return true
}

// fail writes err, logging it when the client could not tell what happened.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Debug().Err(err).Msg("Request failed")
	response.ErrorFromType(w, err)
}
