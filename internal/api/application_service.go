package api

import (
	"context"
	"strings"

	"github.com/hirrd/hirrd/internal/access"
	"github.com/hirrd/hirrd/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// ApplicationService implements hirrd.v1.ApplicationService: the recruiter
// actions that create jobs and applications and move their status.
type ApplicationService struct {
	db      *store.DB
	tracker *access.Tracker
	logger  *zap.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(db *store.DB, tracker *access.Tracker, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{db: db, tracker: tracker, logger: logger}
}

func (s *ApplicationService) PutJob(ctx context.Context, req *PutJobRequest) (*PutJobResponse, error) {
	job := req.Job
	if strings.TrimSpace(job.ID) == "" || strings.TrimSpace(job.RecruiterID) == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "job id and recruiter id are required")
	}
	if err := s.db.PutJob(ctx, &job); err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "put job: %v", err)
	}
	return &PutJobResponse{Job: &job}, nil
}

func (s *ApplicationService) PutApplication(ctx context.Context, req *PutApplicationRequest) (*PutApplicationResponse, error) {
	in := req.Application
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.JobID) == "" || strings.TrimSpace(in.ApplicantID) == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "application id, job id and applicant id are required")
	}
	if err := s.db.PutApplication(ctx, &in); err != nil {
		if code := codeOf(err); code == codes.InvalidArgument {
			return nil, grpcstatus.Error(code, err.Error())
		}
		return nil, grpcstatus.Errorf(codes.FailedPrecondition, "put application: %v", err)
	}
	app, err := s.db.GetApplication(ctx, in.ID)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "get application: %v", err)
	}
	change := s.observe(ctx, app)
	return &PutApplicationResponse{Application: app, State: string(change.To)}, nil
}

func (s *ApplicationService) SetStatus(ctx context.Context, req *SetStatusRequest) (*SetStatusResponse, error) {
	app, err := s.db.SetApplicationStatus(ctx, req.ApplicationID, req.Status)
	if err != nil {
		return nil, grpcstatus.Error(codeOf(err), err.Error())
	}
	if app == nil {
		return nil, grpcstatus.Errorf(codes.NotFound, "application %q not found", req.ApplicationID)
	}
	change := s.observe(ctx, app)
	return &SetStatusResponse{Application: app, State: string(change.To), Flipped: change.Flipped()}, nil
}

// observe announces the stored status. The update is already committed, so
// a failed announcement is logged rather than returned.
func (s *ApplicationService) observe(ctx context.Context, app *store.Application) access.Change {
	change, err := s.tracker.Observe(ctx, app)
	if err != nil {
		s.logger.Warn("failed to announce status change",
			zap.Error(err),
			zap.String("application_id", app.ID),
			zap.String("status", app.Status))
	}
	return change
}
