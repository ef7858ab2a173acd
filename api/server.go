// Package api exposes render-on-demand over HTTP. Requests are queued to a
// single render worker; job state is queryable until the process exits.
package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"briefcast/pipeline"
	"briefcast/types"
)

const queueDepth = 8

// JobStatus is the lifecycle of a queued render.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job tracks one render request through the worker.
type Job struct {
	ID        string             `json:"id"`
	Status    JobStatus          `json:"status"`
	Submitted time.Time          `json:"submitted"`
	Events    []types.StageEvent `json:"events,omitempty"`
	Result    *types.Result      `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Server owns the job registry and the render worker.
type Server struct {
	pipe  *pipeline.Pipeline
	queue chan types.RenderRequest

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewServer builds the server and starts its worker goroutine. Renders run
// one at a time; ffmpeg already saturates the machine on its own.
func NewServer(pipe *pipeline.Pipeline) *Server {
	s := &Server{
		pipe:  pipe,
		queue: make(chan types.RenderRequest, queueDepth),
		jobs:  make(map[string]*Job),
	}
	go s.work()
	return s
}

// Router constructs the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/render", s.handleRender)
	r.GET("/api/jobs/:id", s.handleJob)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleRender validates and enqueues a request, replying immediately with
// the job id.
func (s *Server) handleRender(c *gin.Context) {
	var req types.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload: " + err.Error()})
		return
	}
	if req.Script == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script is required"})
		return
	}
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	}

	s.mu.Lock()
	if _, exists := s.jobs[req.UUID]; exists {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "job already exists", "id": req.UUID})
		return
	}
	s.jobs[req.UUID] = &Job{ID: req.UUID, Status: JobQueued, Submitted: time.Now()}
	s.mu.Unlock()

	select {
	case s.queue <- req:
		c.JSON(http.StatusAccepted, gin.H{"id": req.UUID, "status": JobQueued})
	default:
		s.mu.Lock()
		delete(s.jobs, req.UUID)
		s.mu.Unlock()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render queue is full"})
	}
}

func (s *Server) handleJob(c *gin.Context) {
	job, ok := s.snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// snapshot copies a job under the read lock. The worker keeps mutating the
// stored Job while responses are being serialized, so handlers must never
// hold a pointer into the registry.
func (s *Server) snapshot(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	out := *job
	out.Events = append([]types.StageEvent(nil), job.Events...)
	return out, true
}

// work renders queued jobs one at a time, recording stage events as they
// arrive.
func (s *Server) work() {
	for req := range s.queue {
		id := req.UUID
		s.update(id, func(j *Job) { j.Status = JobRunning })

		s.pipe.OnEvent = func(ev types.StageEvent) {
			s.update(id, func(j *Job) { j.Events = append(j.Events, ev) })
		}
		result, err := s.pipe.Run(req)
		s.pipe.OnEvent = nil

		if err != nil {
			log.Printf("job %s failed: %v", id, err)
			s.update(id, func(j *Job) {
				j.Status = JobFailed
				j.Error = err.Error()
			})
			continue
		}
		s.update(id, func(j *Job) {
			j.Status = JobDone
			j.Result = result
		})
	}
}

func (s *Server) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}
