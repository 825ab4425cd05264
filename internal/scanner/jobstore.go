package scanner

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a scan job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks one asynchronous market scan.
type Job struct {
	ID          string   `json:"task_id"`
	Status      Status   `json:"status"`
	Progress    int      `json:"progress"`
	Total       int      `json:"total"`
	Processed   int      `json:"processed"`
	StartedAt   string   `json:"started_at"`
	CompletedAt string   `json:"completed_at,omitempty"`
	Results     []Result `json:"results"`
	BuySignals  []Result `json:"buy_signals"`
	SellSignals []Result `json:"sell_signals"`
	Error       string   `json:"error,omitempty"`
}

// JobStore keeps scan jobs in memory keyed by uuid.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create registers a new pending job and returns its snapshot.
func (s *JobStore) Create(total int) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Total:     total,
		StartedAt: time.Now().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job
}

// Get returns a snapshot of the job, or false if the id is unknown.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetRunning moves a pending job to running.
func (s *JobStore) SetRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = StatusRunning
	}
}

// UpdateProgress records how far a running job has got.
func (s *JobStore) UpdateProgress(id string, processed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Processed = processed
	job.Total = total
	if total > 0 {
		job.Progress = processed * 100 / total
	}
}

// Complete stores the results and splits them into buy and sell lists.
// Buy candidates are sorted strongest first, sell candidates weakest
// first so the most urgent exits lead the list.
func (s *JobStore) Complete(id string, results []Result) {
	var buys, sells []Result
	for _, r := range results {
		switch {
		case r.Action.Positive():
			buys = append(buys, r)
		case r.Action.Negative():
			sells = append(sells, r)
		}
	}
	sort.SliceStable(buys, func(i, j int) bool { return buys[i].Score > buys[j].Score })
	sort.SliceStable(sells, func(i, j int) bool { return sells[i].Score < sells[j].Score })

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.Results = results
	job.BuySignals = buys
	job.SellSignals = sells
	job.CompletedAt = time.Now().Format(time.RFC3339)
}

// Fail marks the job failed with the given cause.
func (s *JobStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = StatusFailed
	job.Error = err.Error()
	job.CompletedAt = time.Now().Format(time.RFC3339)
}
