package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aula-go-api/internal/dto"
	"github.com/noah-isme/aula-go-api/internal/models"
	"github.com/noah-isme/aula-go-api/internal/repository"
)

// MissingSubmissionService derives, per assignment, the enrolled students
// who have not handed in qualifying work. Drafts and absent rows both count
// as missing.
type MissingSubmissionService interface {
	GetMissing(ctx context.Context, assignmentID uint) (dto.MissingSubmissionsResponse, error)
}

type missingSubmissionService struct {
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMissingSubmissionService builds the calculator. The cache is optional
// and its TTL must stay short: daysOverdue depends on the current time and
// goes stale quickly.
func NewMissingSubmissionService(assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MissingSubmissionService {
	return &missingSubmissionService{
		assignments: assignments,
		enrollments: enrollments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "missing_submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *missingSubmissionService) GetMissing(ctx context.Context, assignmentID uint) (dto.MissingSubmissionsResponse, error) {
	cacheKey := fmt.Sprintf("missing:assignment:%d", assignmentID)

	if s.cache != nil && s.cacheTTL > 0 {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.MissingSubmissionsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("assignment_id", assignmentID).Msg("missing submissions cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read missing submissions cache")
		}
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MissingSubmissionsResponse{}, ErrAssignmentNotFound
		}
		return dto.MissingSubmissionsResponse{}, err
	}

	enrollments, err := s.enrollments.ListByClass(ctx, assignment.ClassID)
	if err != nil {
		return dto.MissingSubmissionsResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return dto.MissingSubmissionsResponse{}, err
	}

	response := s.build(assignment, enrollments, submissions)

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store missing submissions cache")
			}
		}
	}

	return response, nil
}

func (s *missingSubmissionService) build(assignment models.Assignment, enrollments []models.Enrollment, submissions []models.Submission) dto.MissingSubmissionsResponse {
	now := s.now()

	submissionByStudent := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		submissionByStudent[submission.StudentID] = submission
	}

	missing := make([]dto.MissingStudent, 0, len(enrollments))
	for _, enrollment := range enrollments {
		submission, exists := submissionByStudent[enrollment.StudentID]
		if exists && submission.CountsAsHandedIn() {
			continue
		}

		status := "none"
		if exists {
			status = submission.Status
		}

		missing = append(missing, dto.MissingStudent{
			StudentID:   enrollment.StudentID,
			FirstName:   enrollment.Student.FirstName,
			LastName:    enrollment.Student.LastName,
			Email:       enrollment.Student.Email,
			Status:      status,
			DaysOverdue: assignment.DaysOverdue(now),
		})
	}

	// Sorted by (last name, first name) for stable presentation.
	sort.SliceStable(missing, func(i, j int) bool {
		if missing[i].LastName != missing[j].LastName {
			return missing[i].LastName < missing[j].LastName
		}
		if missing[i].FirstName != missing[j].FirstName {
			return missing[i].FirstName < missing[j].FirstName
		}
		return missing[i].StudentID < missing[j].StudentID
	})

	return dto.MissingSubmissionsResponse{
		AssignmentID: assignment.ID,
		ClassID:      assignment.ClassID,
		DueDate:      assignment.DueDate,
		Missing:      missing,
		ComputedAt:   now,
	}
}
