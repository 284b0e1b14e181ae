package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"easel/internal/config"
	"easel/internal/exportcache"
	"easel/internal/imageload"
	"easel/internal/server"
	"easel/internal/store"
	"easel/internal/uploads"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	memoryCacheSize = 64
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas REST API",
		Long: strings.TrimSpace(`
Serve the canvas API, image uploads and PDF export.

Canvases are stored in the configured database (sqlite, postgres or mysql).
Exports are cached in Redis when cache.redis_addr is set, in memory otherwise.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if a := strings.TrimSpace(addr); a != "" {
				cfg.Listen = a
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return writeErr(cmd, err)
			}
			return serve(ctx, cfg, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen)")
	return cmd
}

// serve opens the backing services described by cfg and runs the API on ln
// until ctx is done.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		ln.Close()
		return fmt.Errorf("open store: %w", err)
	}

	cache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		st.Close()
		ln.Close()
		return err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		closeCache()
		st.Close()
		ln.Close()
		return fmt.Errorf("create upload dir: %w", err)
	}

	api := &server.Server{
		Store: st,
		Uploads: uploads.Dir{
			Root:      cfg.UploadDir,
			PublicURL: cfg.PublicURL,
			MaxBytes:  cfg.MaxUploadBytes(),
		},
		Cache:  cache,
		Loader: imageload.FetchLoader{},
	}
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] store: %s, uploads: %s", st.Driver(), cfg.UploadDir)

	return server.Run(ctx, srv, ln, func() {
		closeCache()
		if err := st.Close(); err != nil {
			log.Printf("[WARN] close store: %v", err)
		}
	}, shutdownTimeout)
}

func openCache(ctx context.Context, conf config.CacheConfig) (exportcache.Cache, func(), error) {
	if conf.RedisAddr == "" {
		log.Printf("[INFO] export cache: memory")
		return exportcache.NewMemory(memoryCacheSize, conf.TTL()), func() {}, nil
	}
	rc := exportcache.NewRedis(exportcache.RedisConf{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
		TTL:      conf.TTL(),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", conf.RedisAddr, err)
	}
	log.Printf("[INFO] export cache: redis %s", conf.RedisAddr)
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.Printf("[WARN] close redis: %v", err)
		}
	}, nil
}
