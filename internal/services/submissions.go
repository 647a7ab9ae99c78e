package services

import (
	"context"
	"fmt"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/events"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
)

const (
	LeadNew             = "new"
	ApplicationReceived = "received"
)

// LeadService records contact-form submissions.
type LeadService struct {
	*ContentService[models.Lead, *models.Lead]
	events events.Publisher
	log    logging.Logger
}

func NewLeadService(store db.Store[models.Lead], pub events.Publisher, log logging.Logger) *LeadService {
	return &LeadService{
		ContentService: NewContentService[models.Lead]("lead", store),
		events:         pub,
		log:            log.With("component", "leads"),
	}
}

func (s *LeadService) Submit(ctx context.Context, l *models.Lead) (*models.Lead, error) {
	if l.Status == "" {
		l.Status = LeadNew
	}
	lead, err := s.Add(ctx, l)
	if err != nil {
		return nil, err
	}
	events.Notify(ctx, s.events, s.log, events.LeadCreated, lead)
	return lead, nil
}

type JobApplicationService struct {
	*ContentService[models.JobApplication, *models.JobApplication]
	jobs   db.Store[models.Job]
	events events.Publisher
	log    logging.Logger
}

func NewJobApplicationService(store db.Store[models.JobApplication], jobs db.Store[models.Job],
	pub events.Publisher, log logging.Logger) *JobApplicationService {
	return &JobApplicationService{
		ContentService: NewContentService[models.JobApplication]("job application", store),
		jobs:           jobs,
		events:         pub,
		log:            log.With("component", "applications"),
	}
}

// Apply files an application against an existing job posting.
func (s *JobApplicationService) Apply(ctx context.Context, a *models.JobApplication) (*models.JobApplication, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	job, err := s.jobs.Get(ctx, a.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", a.JobID, err)
	}
	a.JobTitle = job.Title
	a.Status = ApplicationReceived

	app, err := s.Add(ctx, a)
	if err != nil {
		return nil, err
	}
	events.Notify(ctx, s.events, s.log, events.ApplicationCreated, app)
	return app, nil
}

func (s *JobApplicationService) ListByJob(ctx context.Context, jobID string) ([]models.JobApplication, error) {
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}
	return s.FindBy(ctx, "jobId", jobID)
}
