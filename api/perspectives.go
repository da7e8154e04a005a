package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// PerspectiveStatus mirrors the backend lifecycle for one dimension/phase cell.
type PerspectiveStatus string

// Perspective statuses as persisted by the backend.
const (
	PerspectiveLocked     PerspectiveStatus = "locked"
	PerspectivePending    PerspectiveStatus = "pending"
	PerspectiveInProgress PerspectiveStatus = "in_progress"
	PerspectiveCompleted  PerspectiveStatus = "completed"
)

// Perspective is one analysis unit (dimension x phase) within a journey.
type Perspective struct {
	ID        string            `json:"id"`
	JourneyID string            `json:"journey_id"`
	Dimension string            `json:"dimension"`
	Phase     string            `json:"phase"`
	Status    PerspectiveStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ListPerspectives fetches all perspectives of a journey.
func (c *Client) ListPerspectives(ctx context.Context, journeyID string) ([]Perspective, error) {
	var out []Perspective
	path := fmt.Sprintf("/api/journeys/%s/perspectives", journeyID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePerspectiveStatus patches the persisted status of a perspective. This
// is the reconciliation call issued after a successful run; callers treating
// it as best-effort swallow the returned error.
func (c *Client) UpdatePerspectiveStatus(ctx context.Context, perspectiveID string, status PerspectiveStatus) error {
	path := fmt.Sprintf("/api/perspectives/%s/status", perspectiveID)
	body := map[string]PerspectiveStatus{"status": status}
	return c.do(ctx, http.MethodPatch, path, body, nil)
}
