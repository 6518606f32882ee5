package api

import (
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/bowerhall/chainverse/internal/collector"
	"github.com/bowerhall/chainverse/internal/store"
)

const defaultRecentLimit = 20

type todayStatus struct {
	Date              string          `json:"date"`
	KeywordsCollected int             `json:"keywords_collected"`
	KeywordsNeeded    int             `json:"keywords_needed"`
	PoemReady         bool            `json:"poem_ready"`
	Keywords          []store.Keyword `json:"keywords"`
	Poem              *store.Poem     `json:"poem"`
}

type statusResponse struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	MemTotal      uint64  `json:"mem_total_bytes"`
	MemUsed       uint64  `json:"mem_used_bytes"`
	MemUsage      float64 `json:"mem_usage_percent"`
	DiskUsed      uint64  `json:"disk_used_bytes"`
	DiskFree      uint64  `json:"disk_free_bytes"`
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "chainverse",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	hostname, _ := os.Hostname()

	status := statusResponse{
		Hostname:      hostname,
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		UptimeSeconds: time.Since(s.started).Seconds(),
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		status.MemTotal = memInfo.Total
		status.MemUsed = memInfo.Used
		status.MemUsage = memInfo.UsedPercent
	}

	if diskInfo, err := disk.Usage("/"); err == nil {
		status.DiskUsed = diskInfo.Used
		status.DiskFree = diskInfo.Free
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleAllPoems(c *gin.Context) {
	poems, err := s.db.AllPoems()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if poems == nil {
		poems = []store.Poem{}
	}
	c.JSON(http.StatusOK, poems)
}

func (s *Server) handleToday(c *gin.Context) {
	today := collector.Today()

	keywords, err := s.db.KeywordsForDate(today)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if keywords == nil {
		keywords = []store.Keyword{}
	}

	poem, err := s.db.PoemByDate(today)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, todayStatus{
		Date:              today,
		KeywordsCollected: len(keywords),
		KeywordsNeeded:    s.minKeywords,
		PoemReady:         poem != nil,
		Keywords:          keywords,
		Poem:              poem,
	})
}

func (s *Server) handlePoemByDate(c *gin.Context) {
	date := c.Param("date")

	poem, err := s.db.PoemByDate(date)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if poem == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no poem found for date: " + date})
		return
	}

	c.JSON(http.StatusOK, poem)
}

func (s *Server) handleTodayKeywords(c *gin.Context) {
	keywords, err := s.db.KeywordsForDate(collector.Today())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if keywords == nil {
		keywords = []store.Keyword{}
	}
	c.JSON(http.StatusOK, keywords)
}

func (s *Server) handleRecentKeywords(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	keywords, err := s.db.RecentKeywords(limit)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	if keywords == nil {
		keywords = []store.Keyword{}
	}
	c.JSON(http.StatusOK, keywords)
}
