package api

import (
	"context"
	"fmt"
	"net/http"

	"dayplan-cli/internal/model"
)

func (c *Client) Todos(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, in model.CreateTodo) (model.Todo, error) {
	var created model.Todo
	if err := c.do(ctx, http.MethodPost, "/addtodo", in, &created); err != nil {
		return model.Todo{}, err
	}
	return created, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id int, in model.UpdateTodo) (model.Todo, error) {
	var updated model.Todo
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/todos/%d", id), in, &updated); err != nil {
		return model.Todo{}, err
	}
	return updated, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/todos/%d", id), nil, nil)
}

// ToggleTodo re-sends the todo with its completed flag inverted. Everything
// else is left out of the body so the backend keeps it as-is.
func (c *Client) ToggleTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	completed := !todo.Completed
	return c.UpdateTodo(ctx, todo.ID, model.UpdateTodo{Completed: &completed})
}
