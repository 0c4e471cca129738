// Command consumer is a minimal fanout target for the http driver. It accepts
// the event JSON gitping publishes per topic and logs it, which is enough to
// try out rules end to end:
//
//	fanout:
//	  driver: http
//	  http:
//	    mode: base_url
//	    base_url: http://localhost:9090/topics
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gitping/internal"
)

func main() {
	addr := flag.String("addr", ":9090", "Listen address")
	flag.Parse()

	logger := internal.NewLogger("example-consumer")

	mux := http.NewServeMux()
	mux.HandleFunc("/topics/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		topic := strings.TrimPrefix(r.URL.Path, "/topics/")

		var event internal.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		logger.Printf("topic=%s action=%s author=%s request_id=%s", topic, event.Action, event.Author, event.RequestID)
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
