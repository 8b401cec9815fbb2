package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeVerificationEmail delivers an email verification link
	JobTypeVerificationEmail JobType = "verification_email"
)

// DefaultJobTTL is how long a verification email job stays deliverable.
const DefaultJobTTL = 24 * time.Hour

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	Email      string         `json:"email"`
	Link       string         `json:"link"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewVerificationEmailJob creates a job that delivers link to email. ttl <= 0
// means the job never expires.
func NewVerificationEmailJob(email, link string, ttl time.Duration) *Job {
	now := time.Now()
	job := &Job{
		ID:         uuid.New(),
		Type:       JobTypeVerificationEmail,
		Email:      email,
		Link:       link,
		Metadata:   make(map[string]any),
		CreatedAt:  now,
		RetryCount: 0,
		MaxRetries: 3,
	}
	if ttl > 0 {
		notAfter := now.Add(ttl)
		job.NotAfter = &notAfter
	}
	return job
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// RetryAfter schedules the job for another attempt after delay.
func (j *Job) RetryAfter(delay time.Duration) {
	j.IncrementRetry()
	next := time.Now().Add(delay)
	j.NotBefore = &next
}
