// Package server exposes a mutant client over HTTP.
//
// The layering is CLI → Server → Router → Handlers → Client. Client hooks
// feed an update broker that fans out to Server-Sent Events and WebSocket
// clients, and the WebSocket hub also carries viewer commands, so browser
// viewers draw the structures the client holds.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	trimmed, mutated := server.RemoteViewers(hub, logger)
//	client, err := mutant.New(mutant.WithViewers(trimmed, mutated))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := server.New(client, hub, server.DefaultConfig(), logger)
//	srv.Start()
//	http.ListenAndServe(":8080", srv.Handler())
package server

// @title mutant API
// @version 1.0
// @description Drives MutantAutoMate analysis runs and structure actions,
// @description with live updates over Server-Sent Events and WebSocket.
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
