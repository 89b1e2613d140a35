// Package fakeservice is an httptest stand-in for the notebook service.
//
// Replies are queued per key: the RPC id for batch calls, KeyQuery for the
// streaming endpoint and KeyPage for the landing page. Every request is
// recorded, and an ordered event log lets tests assert on interleavings
// such as "rpc, page refresh, rpc".
package fakeservice

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/infrastructure/config"
	"github.com/GriffinCanCode/NotebookRPC/internal/protocol"
	"github.com/GriffinCanCode/NotebookRPC/internal/testutil"
)

// Keys for non-RPC endpoints.
const (
	KeyPage  = "page"
	KeyQuery = "query"
)

// Reply is one scripted response.
type Reply struct {
	Status int
	Body   string
	Header map[string]string
	Delay  time.Duration
	// Drop closes the connection without answering.
	Drop bool
}

// OK returns a 200 reply.
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// Status returns a reply with a status and a short body.
func Status(code int) Reply {
	return Reply{Status: code, Body: http.StatusText(code)}
}

// Request is what the service saw.
type Request struct {
	Key        string
	Params     any
	CSRF       string
	SessionID  string
	ReqID      string
	SourcePath string
	BuildLabel string
	Cookies    map[string]string
	Header     http.Header
}

// Responder computes a reply from a request.
type Responder func(Request) Reply

// Service is a scripted fake of the notebook service.
type Service struct {
	Server *httptest.Server
	t      testing.TB

	mu         sync.Mutex
	queues     map[string][]Reply
	responders map[string]Responder
	requests   []Request
	events     []string
	csrf       string
	sessionID  string
}

// New starts a fake service that stops when the test ends.
func New(t testing.TB) *Service {
	t.Helper()
	s := &Service{
		t:          t,
		queues:     make(map[string][]Reply),
		responders: make(map[string]Responder),
		csrf:       "fresh-csrf",
		sessionID:  "-1000",
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

// Config returns a configuration pointing at the fake service.
func (s *Service) Config() *config.Config {
	cfg := config.Default()
	cfg.Service.BaseURL = s.Server.URL
	cfg.Timeouts.Page = config.Duration(5 * time.Second)
	return cfg
}

// SetPage changes the tokens served on the landing page.
func (s *Service) SetPage(csrf, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrf, s.sessionID = csrf, sessionID
}

// Enqueue appends replies for key.
func (s *Service) Enqueue(key string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[key] = append(s.queues[key], replies...)
}

// Respond installs a responder for key, used once the queue is empty.
func (s *Service) Respond(key string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[key] = r
}

// Note appends an event from outside the service, such as a store load.
func (s *Service) Note(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns the ordered event log.
func (s *Service) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// Requests returns the recorded requests for key.
func (s *Service) Requests(key string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Key == key {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests were made for key.
func (s *Service) Count(key string) int {
	return len(s.Requests(key))
}

func (s *Service) serve(w http.ResponseWriter, r *http.Request) {
	req := s.record(r)
	reply := s.next(req)

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if reply.Drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				if tcp, ok := conn.(*net.TCPConn); ok {
					_ = tcp.SetLinger(0)
				}
				_ = conn.Close()
				return
			}
		}
	}

	for k, v := range reply.Header {
		w.Header().Set(k, v)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}

func (s *Service) record(r *http.Request) Request {
	q := r.URL.Query()
	req := Request{
		SessionID:  q.Get("f.sid"),
		ReqID:      q.Get("_reqid"),
		SourcePath: q.Get("source-path"),
		BuildLabel: q.Get("bl"),
		Cookies:    make(map[string]string),
		Header:     r.Header.Clone(),
	}
	for _, c := range r.Cookies() {
		req.Cookies[c.Name] = c.Value
	}

	body, _ := io.ReadAll(r.Body)
	switch {
	case r.Method == http.MethodGet:
		req.Key = KeyPage
	case q.Get("rpcids") != "":
		req.Key = q.Get("rpcids")
		if decoded, err := protocol.DecodeRequest(string(body)); err == nil {
			req.Params = decoded.Params
			req.CSRF = decoded.CSRF
		} else {
			s.t.Errorf("fakeservice: undecodable batch body: %v", err)
		}
	default:
		req.Key = KeyQuery
		if params, csrf, err := protocol.DecodeQuery(string(body)); err == nil {
			req.Params = params
			req.CSRF = csrf
		} else {
			s.t.Errorf("fakeservice: undecodable query body: %v", err)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.events = append(s.events, req.Key)
	s.mu.Unlock()
	return req
}

func (s *Service) next(req Request) Reply {
	s.mu.Lock()
	if q := s.queues[req.Key]; len(q) > 0 {
		s.queues[req.Key] = q[1:]
		s.mu.Unlock()
		return q[0]
	}
	responder := s.responders[req.Key]
	csrf, sid := s.csrf, s.sessionID
	s.mu.Unlock()

	switch {
	case responder != nil:
		return responder(req)
	case req.Key == KeyPage:
		return OK(testutil.LandingPage(csrf, sid))
	default:
		return Reply{Status: http.StatusTeapot, Body: "no reply queued for " + req.Key + " (" + strconv.Itoa(s.Count(req.Key)) + " seen)"}
	}
}
