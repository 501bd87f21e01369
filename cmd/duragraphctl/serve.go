package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/duragraph/workflow-go/cmd/duragraphctl/config"
	"github.com/duragraph/workflow-go/internal/execnode"
	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/graph"
	"github.com/duragraph/workflow-go/internal/graphmodel"
	"github.com/duragraph/workflow-go/internal/messaging"
	"github.com/duragraph/workflow-go/internal/runner"
	"github.com/duragraph/workflow-go/internal/streaming"
	"github.com/duragraph/workflow-go/internal/wfevents"
	"github.com/duragraph/workflow-go/internal/workflow"
)

type runRequest struct {
	Graph graphmodel.GraphData `json:"graph"`
	Input *flowdata.FlowData   `json:"input,omitempty"`
}

func newServeCmd() *cobra.Command {
	var addr, natsURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graph compilation and execution over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr == "" {
				addr = envOr("DURAGRAPHCTL_ADDR", ":8080")
			}
			if natsURL == "" {
				natsURL = cfg.NATSURL
			}

			tp := runner.NewTracerProvider("duragraphctl")
			defer tp.Shutdown(context.Background())

			pub, err := messaging.NewPublisher(natsURL)
			if err != nil {
				return fmt.Errorf("connecting to nats at %s: %w", natsURL, err)
			}
			defer pub.Close()
			bridge := streaming.NewBridge(pub)

			deps := buildDependencies(cfg)

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Recover())
			e.Use(middleware.CORS())

			e.GET("/healthz", func(c echo.Context) error {
				return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
			})
			e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
			e.POST("/runs", func(c echo.Context) error { return postRun(c, deps, bridge) })
			e.POST("/runs/stream", func(c echo.Context) error { return postRunStream(c, deps, bridge) })

			log.Printf("duragraphctl serving on %s (nats %s)", addr, natsURL)
			return e.Start(addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default :8080, or $DURAGRAPHCTL_ADDR)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS URL the streaming bridge publishes run events to (default $DURAGRAPHCTL_NATS_URL or nats://localhost:4222)")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func decodeRunRequest(c echo.Context) (*graph.Graph, *flowdata.FlowData, error) {
	var req runRequest
	if err := c.Bind(&req); err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(req.Graph)
	if err != nil {
		return nil, nil, err
	}
	g, err := graph.FromJSON(raw)
	if err != nil {
		return nil, nil, err
	}
	return g, req.Input, nil
}

// postRun compiles the posted graph and runs it once to completion,
// publishing every node lifecycle event through bridge to NATS along the
// way, and returns the end node's payload.
func postRun(c echo.Context, deps execnode.Dependencies, bridge *streaming.Bridge) error {
	g, input, err := decodeRunRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bus := wfevents.NewBus()
	bridge.Attach(bus)

	wf, err := workflow.New(g, workflow.WithDependencies(deps), workflow.WithBus(bus))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	runID := uuid.New().String()
	out, err := wf.Start(c.Request().Context(), input, workflow.WithRunID(runID))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"run_id": runID, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"run_id": runID, "output": out})
}

// postRunStream runs the posted graph while forwarding every node
// lifecycle event to the client as a server-sent event (and, via bridge,
// to NATS), followed by a final "result" event carrying the end node's
// payload or an error.
func postRunStream(c echo.Context, deps execnode.Dependencies, bridge *streaming.Bridge) error {
	g, input, err := decodeRunRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bus := wfevents.NewBus()
	bridge.Attach(bus)
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	writeEvent := func(name string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", name, data)
		resp.Flush()
	}

	for _, eventType := range []string{
		wfevents.EventTypeNodeStarted,
		wfevents.EventTypeNodeCompleted,
		wfevents.EventTypeNodeFailed,
		wfevents.EventTypeNodeSkipped,
	} {
		eventType := eventType
		bus.Subscribe(eventType, func(_ context.Context, ev wfevents.Event) {
			writeEvent(eventType, ev)
		})
	}

	wf, err := workflow.New(g, workflow.WithDependencies(deps), workflow.WithBus(bus))
	if err != nil {
		writeEvent("result", map[string]string{"error": err.Error()})
		return nil
	}

	runID := uuid.New().String()
	out, err := wf.Start(c.Request().Context(), input, workflow.WithRunID(runID))
	if err != nil {
		writeEvent("result", map[string]string{"run_id": runID, "error": err.Error()})
		return nil
	}
	writeEvent("result", map[string]interface{}{"run_id": runID, "output": out})
	return nil
}
