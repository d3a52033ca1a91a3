// Package vststest runs an in-process imitation of the project and service
// endpoint APIs for tests.
package vststest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/flant/negentropy/sepctl/pkg/httpx"
)

type Route string

const (
	RouteGetProject            Route = "get-project"
	RouteListServiceEndpoints  Route = "list-service-endpoints"
	RouteCreateServiceEndpoint Route = "create-service-endpoint"
	RouteDeleteServiceEndpoint Route = "delete-service-endpoint"
)

// Endpoint is a stored service endpoint with the payload it was created from.
type Endpoint struct {
	ID      uuid.UUID
	Name    string
	Payload json.RawMessage
}

// Request is a request received by the server.
type Request struct {
	Route    Route
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server
	AccessToken string

	mu        sync.Mutex
	projects  map[string]uuid.UUID
	endpoints map[uuid.UUID][]Endpoint
	requests  []Request
	failures  map[Route]failure
	// createdIDOverride replaces the id echoed by the create route.
	createdIDOverride *uuid.UUID
}

// NewServer starts a server accepting only Basic auth with accessToken as a password.
func NewServer(accessToken string) *Server {
	s := &Server{
		AccessToken: accessToken,
		projects:    map[string]uuid.UUID{},
		endpoints:   map[uuid.UUID][]Endpoint{},
		failures:    map[Route]failure{},
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.authenticate)

	router.Get("/defaultcollection/_apis/projects/{name}", s.handle(RouteGetProject, s.getProject))
	router.Get("/defaultcollection/{projectID}/_apis/distributedtask/serviceendpoints", s.handle(RouteListServiceEndpoints, s.listServiceEndpoints))
	router.Post("/defaultcollection/{projectID}/_apis/distributedtask/serviceendpoints/{id}", s.handle(RouteCreateServiceEndpoint, s.createServiceEndpoint))
	router.Delete("/defaultcollection/{projectID}/_apis/serviceendpoint/endpoints/{id}", s.handle(RouteDeleteServiceEndpoint, s.deleteServiceEndpoint))

	s.Server = httptest.NewServer(router)
	return s
}

// AddProject registers a project and returns its identifier.
func (s *Server) AddProject(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.projects[name] = id
	return id
}

// AddEndpoint stores an endpoint without sending a request, duplicates are allowed.
func (s *Server) AddEndpoint(projectID uuid.UUID, name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	payload, _ := json.Marshal(map[string]interface{}{"id": id, "name": name, "type": "generic"})
	s.endpoints[projectID] = append(s.endpoints[projectID], Endpoint{ID: id, Name: name, Payload: payload})
	return id
}

func (s *Server) Endpoints(projectID uuid.UUID) []Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Endpoint(nil), s.endpoints[projectID]...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns received requests for one route.
func (s *Server) RequestsTo(route Route) []Request {
	res := make([]Request, 0)
	for _, r := range s.Requests() {
		if r.Route == route {
			res = append(res, r)
		}
	}
	return res
}

// Fail makes the route respond with status and body.
func (s *Server) Fail(route Route, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// EchoCreatedID makes the create route respond with id instead of the submitted one.
func (s *Server) EchoCreatedID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdIDOverride = &id
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	expected := httpx.BasicAuthHeader("", s.AccessToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != expected {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "Access Denied: The Personal Access Token used has expired.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, body []byte)

func (s *Server) handle(route Route, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:    route,
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     body,
		})
		f, shouldFail := s.failures[route]
		s.mu.Unlock()

		if shouldFail {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		h(w, r, body)
	}
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request, _ []byte) {
	name := urlParam(r, "name")

	s.mu.Lock()
	id, ok := s.projects[name]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": fmt.Sprintf("TF200016: The following project does not exist: %s.", name),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    id,
		"name":  name,
		"state": "wellFormed",
	})
}

func (s *Server) listServiceEndpoints(w http.ResponseWriter, r *http.Request, _ []byte) {
	projectID, ok := s.knownProject(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	value := make([]json.RawMessage, 0)
	for _, e := range s.endpoints[projectID] {
		value = append(value, e.Payload)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(value),
		"value": value,
	})
}

func (s *Server) createServiceEndpoint(w http.ResponseWriter, r *http.Request, body []byte) {
	projectID, ok := s.knownProject(w, r)
	if !ok {
		return
	}

	var payload struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid service endpoint"})
		return
	}
	if payload.ID.String() != urlParam(r, "id") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "id in body does not match id in path"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.endpoints[projectID] {
		if e.Name == payload.Name {
			writeJSON(w, http.StatusConflict, map[string]string{
				"message": fmt.Sprintf("Service endpoint with name %s already exists.", payload.Name),
			})
			return
		}
	}

	s.endpoints[projectID] = append(s.endpoints[projectID], Endpoint{ID: payload.ID, Name: payload.Name, Payload: body})

	var echoed map[string]interface{}
	_ = json.Unmarshal(body, &echoed)
	if s.createdIDOverride != nil {
		echoed["id"] = s.createdIDOverride.String()
	}
	writeJSON(w, http.StatusOK, echoed)
}

func (s *Server) deleteServiceEndpoint(w http.ResponseWriter, r *http.Request, _ []byte) {
	projectID, ok := s.knownProject(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(urlParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid endpoint id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	endpoints := s.endpoints[projectID]
	for i, e := range endpoints {
		if e.ID == id {
			s.endpoints[projectID] = append(endpoints[:i:i], endpoints[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{
		"message": fmt.Sprintf("Service endpoint with id %s does not exist.", id),
	})
}

func (s *Server) knownProject(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(urlParam(r, "projectID"))
	if err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, known := range s.projects {
			if known == id {
				return id, true
			}
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "project not found"})
	return uuid.Nil, false
}

func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(obj)
}
