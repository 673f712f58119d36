package application

import (
	"context"
	"fmt"
)

// App is the root of the workspace: the session gate in front of the todo view.
type App struct {
	Session *SessionManager
	Todos   *TodoService
}

// NewApp composes the session manager and the todo service.
func NewApp(session *SessionManager, todos *TodoService) *App {
	return &App{Session: session, Todos: todos}
}

// Restore loads both persisted keys. They are independent; there is no cross-key consistency check.
func (a *App) Restore(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("App is nil")
	}
	if err := a.Session.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if err := a.Todos.Restore(ctx); err != nil {
		return fmt.Errorf("restore todos: %w", err)
	}
	return nil
}

// View renders the state shown to the user. The todo part is only filled in once logged in.
func (a *App) View() AppView {
	user, ok := a.Session.User()
	if !ok {
		return AppView{}
	}

	todos := a.Todos
	return AppView{
		Authenticated: true,
		User:          &user,
		Todos:         todos.Filtered(),
		Filter:        todos.Filter(),
		Summary:       todos.Summary(),
		Weather:       todos.Weather(),
		Draft:         todos.Draft(),
	}
}
