package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

// Run serves on ln until ctx is cancelled, then stops accepting connections
// and gives in-flight requests up to timeout to finish. cleanup runs after
// shutdown if given.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, cleanup func(), timeout time.Duration) error {
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("[INFO] easel listening on %s ...", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
			return
		}
		serverErrChan <- nil
	}()

	select {
	case err := <-serverErrChan:
		if cleanup != nil {
			cleanup()
		}
		return err
	case <-ctx.Done():
	}
	log.Printf("[INFO] shutting down ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] server shutdown failed: %v", err)
	}
	if cleanup != nil {
		cleanup()
	}
	if err := <-serverErrChan; err != nil {
		return err
	}
	log.Printf("[INFO] shutdown complete")
	return nil
}
