package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Journey is one business-analysis engagement grouping perspectives.
type Journey struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	GoalID         string    `json:"goal_id"`
	OrganizationID string    `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListJourneys fetches all journeys visible to the session.
func (c *Client) ListJourneys(ctx context.Context) ([]Journey, error) {
	var out []Journey
	if err := c.do(ctx, http.MethodGet, "/api/journeys", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJourney fetches a single journey by id.
func (c *Client) GetJourney(ctx context.Context, journeyID string) (*Journey, error) {
	var out Journey
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/journeys/%s", journeyID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateJourney creates a journey bound to a goal.
func (c *Client) CreateJourney(ctx context.Context, title, goalID string) (*Journey, error) {
	var out Journey
	body := map[string]string{"title": title, "goal_id": goalID}
	if err := c.do(ctx, http.MethodPost, "/api/journeys", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
