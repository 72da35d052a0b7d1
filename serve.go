package main

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type noCache struct {
	http.Handler
}

func (h *noCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	h.Handler.ServeHTTP(w, r)
}

// surfaceHandler serves the surface of the loaded cloud.
// Query parameter voxel rebuilds it with a new cubic voxel size.
type surfaceHandler struct {
	mu     sync.Mutex
	cmd    *commandContext
	logger *zap.SugaredLogger
}

func (h *surfaceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if v := r.URL.Query().Get("voxel"); v != "" {
		d, err := strconv.ParseFloat(v, 32)
		if err != nil {
			http.Error(w, "invalid voxel size", http.StatusBadRequest)
			return
		}
		if err := h.cmd.SetVoxelSize(float32(d)); err != nil {
			h.logger.Warnw("failed to rebuild surface", "voxel", d, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if err := h.cmd.ExportPCD(w); err != nil {
		h.logger.Errorw("failed to export surface", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func newServeMux(cmd *commandContext, dir string, logger *zap.SugaredLogger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/surface.pcd", &noCache{Handler: &surfaceHandler{cmd: cmd, logger: logger}})
	mux.Handle("/", &noCache{Handler: http.FileServer(http.Dir(dir))})
	return mux
}

func serve(ctx context.Context, addr string, h http.Handler, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutting down server")
	}
	return nil
}
