// Command devproxy puts the client, its static assets and the backend behind
// one origin: it serves a static directory and forwards the realtime routes
// to the configured backend. That is what lets a loopback backend remain
// reachable for clients on other devices: they talk to this proxy's origin
// and never see the loopback address.
package main

import (
	"bufio"
	"context"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Marlon200530/real-time-map-client/internal/config"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "devproxy_requests_total",
		Help: "Requests handled, by route class and status code.",
	},
	[]string{"route", "code"},
)

func main() {
	cfg := config.Load()
	if cfg.BackendURL == "" {
		log.Fatal("devproxy: BACKEND_URL is required")
	}
	backend, err := url.Parse(cfg.BackendURL)
	if err != nil {
		log.Fatalf("devproxy: invalid BACKEND_URL: %v", err)
	}

	// ReverseProxy passes websocket upgrades through untouched, so /ws
	// needs no special casing.
	proxy := httputil.NewSingleHostReverseProxy(backend)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("devproxy: backend error for %s: %v", r.URL.Path, err)
		w.WriteHeader(http.StatusBadGateway)
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for _, route := range []string{"/ws", "/emit", "/poll"} {
		r.Handle(route, observe("backend", proxy))
	}
	r.PathPrefix("/api/").Handler(observe("backend", proxy))
	r.PathPrefix("/").Handler(observe("static", http.FileServer(http.Dir(cfg.StaticDir))))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("devproxy: listening on %s, backend %s, static %s",
			cfg.ListenAddr, cfg.BackendURL, cfg.StaticDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("devproxy: server error: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("devproxy: shutdown initiated")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("devproxy: shutdown error: %v", err)
	}
}

// observe wraps a handler with request logging and the per-route counter.
func observe(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		log.Printf("%s %s %d", r.Method, r.URL.Path, rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}
