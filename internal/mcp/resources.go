package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/analytics"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Resource definitions ---

var resCurrentMetrics = mcp.NewResource(
	"lyftup://current_metrics",
	"Current Metrics",
	mcp.WithResourceDescription("Aggregate progress metrics and the trailing 12-week series, recomputed from all completed sessions"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"lyftup://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 14 days, including exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) currentMetrics(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.CurrentSessions(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := map[string]any{
		"metrics": analytics.ComputeMetrics(sessions, now),
		"weekly":  analytics.WeeklySeries(sessions, now),
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	sessions, err := h.ds.QuerySessions(ctx, start, end, uid)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
