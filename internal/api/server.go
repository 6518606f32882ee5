package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bowerhall/chainverse/internal/logger"
	"github.com/bowerhall/chainverse/internal/store"
)

// Server is the read-only HTTP projection of the store. It never writes:
// the collector owns all mutations.
type Server struct {
	db          *store.Store
	minKeywords int
	started     time.Time
}

func NewServer(db *store.Store, minKeywords int) *Server {
	return &Server{
		db:          db,
		minKeywords: minKeywords,
		started:     time.Now(),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors(), requestLogger())

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/poems", s.handleAllPoems)
		v1.GET("/poems/today", s.handleToday)
		v1.GET("/poems/:date", s.handlePoemByDate)
		v1.GET("/keywords/today", s.handleTodayKeywords)
		v1.GET("/keywords/recent", s.handleRecentKeywords)
	}

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("api server shutting down")
	return server.Shutdown(shutdownCtx)
}
