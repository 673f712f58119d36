// Package http provides HTTP handlers and middleware for the todo service.
//
// The router exposes a JSON API:
//   - POST /login: body {"username","password"}. Any non-empty pair logs in and returns
//     {"authenticated":true,"user":{"username","lastLogin"}}; an empty field returns 401 with
//     "Please enter both username and password".
//   - POST /logout: clears the session and returns 204. GET /session reports the login state.
//   - GET /todos[?filter=All|Completed|Pending], POST /todos, POST /todos/{id}/toggle,
//     DELETE /todos/{id}, PUT /filter, GET /summary: todo list endpoints. The list payload is
//     {"todos":[...],"filter":"...","summary":{"total","completed","pending"}}.
//   - GET /weather, POST /weather {"city"}: weather panel state. A failed lookup returns 502
//     with "Unable to fetch weather data".
//   - GET /healthz.
//
// Todo and weather endpoints answer 401 while nobody is logged in.
//
// The browser view is served from GET / and driven by form posts under /ui/, each of which
// redirects back to / with 303 See Other.
package http
