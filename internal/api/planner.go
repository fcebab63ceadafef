package api

import (
	"context"
	"fmt"
	"net/http"

	"dayplan-cli/internal/model"
)

type chatPlanRequest struct {
	UserID   string              `json:"user_id"`
	Messages []model.ChatMessage `json:"messages"`
}

// ChatReply is the assistant's turn: free text plus any structured tasks the
// backend extracted from the conversation.
type ChatReply struct {
	Reply string           `json:"reply"`
	Tasks []model.TaskData `json:"tasks"`
}

type structuredPlan struct {
	UserID string           `json:"user_id"`
	Tasks  []model.TaskData `json:"tasks"`
}

type saveResponse struct {
	Message string `json:"message"`
}

// ChatPlan posts the full transcript and returns the assistant's reply.
func (c *Client) ChatPlan(ctx context.Context, userID string, messages []model.ChatMessage) (ChatReply, error) {
	var reply ChatReply
	err := c.do(ctx, http.MethodPost, "/ai/chat-plan", chatPlanRequest{UserID: userID, Messages: messages}, &reply)
	if err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// SaveStructuredPlan persists a staged task batch and returns the backend's
// confirmation message.
func (c *Client) SaveStructuredPlan(ctx context.Context, userID string, tasks []model.TaskData) (string, error) {
	var resp saveResponse
	err := c.do(ctx, http.MethodPost, "/ai/save-structured-plan", structuredPlan{UserID: userID, Tasks: tasks}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Plans fetches every saved plan for the user. Read-only.
func (c *Client) Plans(ctx context.Context, userID string) ([]model.Plan, error) {
	var plans []model.Plan
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ai/plans/%s", userID), nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
