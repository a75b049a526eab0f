// Package workflow owns candidate state in the outreach pipeline and
// enforces the legal transition table.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/pkg/models"
)

// ErrIllegalTransition is returned when an action is not valid for the
// candidate's current status. The candidate is left unchanged.
var ErrIllegalTransition = errors.New("illegal workflow transition")

// Action is a workflow verb applied to a candidate.
type Action string

const (
	ActionPause           Action = "pause"
	ActionResume          Action = "resume"
	ActionCancel          Action = "cancel"
	ActionForceCall       Action = "forceCall"
	ActionSkipToScreening Action = "skipToScreening"
)

// transitions maps (status, action) to the resulting status. Resume and
// forceCall are handled specially: resume restores the pre-pause status and
// forceCall changes nothing.
var transitions = map[models.WorkflowStatus]map[Action]models.WorkflowStatus{
	models.StatusContacted: {
		ActionPause:           models.StatusPaused,
		ActionCancel:          models.StatusArchived,
		ActionSkipToScreening: models.StatusScreening,
	},
	models.StatusPaused: {
		ActionResume:    "", // restores pre-pause status
		ActionCancel:    models.StatusArchived,
		ActionForceCall: models.StatusPaused, // no state change
	},
	models.StatusReplied: {
		ActionPause:           models.StatusPaused,
		ActionCancel:          models.StatusArchived,
		ActionSkipToScreening: models.StatusScreening,
	},
	models.StatusScreening: {
		ActionPause:  models.StatusPaused,
		ActionCancel: models.StatusArchived,
	},
}

// ContactAttempter receives out-of-band contact requests triggered by
// forceCall. The attempt does not change workflow state.
type ContactAttempter interface {
	AttemptContact(ctx context.Context, candidate *models.WorkflowCandidate) error
}

// GraduateInfo carries the candidate data captured at graduation time.
type GraduateInfo struct {
	MatchScore    int
	CandidateName string
	Phone         string
	Email         string
}

// Engine applies workflow transitions. All mutations go through the engine's
// mutex, so two transitions never race on the same candidate.
type Engine struct {
	store *database.Store
	log   *zap.Logger

	mu        sync.Mutex
	attempter ContactAttempter
}

// NewEngine returns a workflow engine over the store.
func NewEngine(store *database.Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// SetContactAttempter registers the collaborator invoked by ForceCall.
func (e *Engine) SetContactAttempter(a ContactAttempter) {
	e.attempter = a
}

// Graduate promotes a matched CV into the pipeline at status pending.
// Graduating the same (project, cv) pair twice returns the existing
// candidate rather than an error.
func (e *Engine) Graduate(cvID, projectID string, info GraduateInfo) (*models.WorkflowCandidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.GetProjectCandidate(projectID, cvID)
	if err == nil {
		e.log.Debug("candidate already graduated",
			zap.String("cv_id", cvID), zap.String("project_id", projectID))
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if info.CandidateName == "" {
		return nil, fmt.Errorf("candidate name is required")
	}

	candidate := &models.WorkflowCandidate{
		ID:         cvID,
		ProjectID:  projectID,
		Name:       info.CandidateName,
		Phone:      info.Phone,
		Email:      info.Email,
		MatchScore: info.MatchScore,
		Status:     models.StatusPending,
	}
	if err := e.store.CreateCandidate(candidate); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	e.log.Info("candidate graduated to outreach",
		zap.String("cv_id", cvID),
		zap.String("project_id", projectID),
		zap.Int("match_score", info.MatchScore))
	return candidate, nil
}

// GraduateBatch graduates each id independently. One failure never aborts
// the others; the result partitions ids into successes and failures.
func (e *Engine) GraduateBatch(cvIDs []string, projectID string, infos map[string]GraduateInfo) models.GraduationResult {
	result := models.GraduationResult{}
	for _, id := range cvIDs {
		info, ok := infos[id]
		if !ok {
			result.Failed = append(result.Failed, models.GraduationFailure{
				ID: id, Reason: "no candidate info provided",
			})
			continue
		}
		if _, err := e.Graduate(id, projectID, info); err != nil {
			result.Failed = append(result.Failed, models.GraduationFailure{
				ID: id, Reason: err.Error(),
			})
			continue
		}
		result.Success = append(result.Success, id)
	}
	return result
}

// Apply performs a workflow action on a candidate. Actions not present in
// the transition table for the candidate's current status are rejected with
// ErrIllegalTransition and no side effects.
func (e *Engine) Apply(ctx context.Context, candidateID string, action Action) error {
	e.mu.Lock()

	candidate, err := e.store.GetCandidate(candidateID)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	allowed, ok := transitions[candidate.Status]
	if !ok {
		e.mu.Unlock()
		return illegal(candidate.Status, action)
	}
	target, ok := allowed[action]
	if !ok {
		e.mu.Unlock()
		return illegal(candidate.Status, action)
	}

	if action == ActionForceCall {
		attempter := e.attempter
		// The attempt goes through the dispatcher, whose send callback takes
		// this mutex again; release it before calling out.
		e.mu.Unlock()
		if attempter == nil {
			return fmt.Errorf("no contact attempter configured")
		}
		if err := attempter.AttemptContact(ctx, candidate); err != nil {
			return fmt.Errorf("contact attempt: %w", err)
		}
		return nil
	}
	defer e.mu.Unlock()

	switch action {
	case ActionResume:
		target = candidate.PrePauseStatus
		if target == "" {
			// Paused before the pre-pause status existed; contacted is the
			// only state pause was reachable from in that data.
			target = models.StatusContacted
		}
		if err := e.store.UpdateCandidateStatus(candidate.ProjectID, candidate.ID, target, ""); err != nil {
			return err
		}
	case ActionPause:
		if err := e.store.UpdateCandidateStatus(candidate.ProjectID, candidate.ID, target, candidate.Status); err != nil {
			return err
		}
	default:
		if err := e.store.UpdateCandidateStatus(candidate.ProjectID, candidate.ID, target, ""); err != nil {
			return err
		}
	}

	e.log.Info("workflow transition",
		zap.String("candidate_id", candidate.ID),
		zap.String("action", string(action)),
		zap.String("from", string(candidate.Status)),
		zap.String("to", string(target)))
	return nil
}

func illegal(status models.WorkflowStatus, action Action) error {
	return fmt.Errorf("action %s not allowed in status %s: %w", action, status, ErrIllegalTransition)
}

// Pause suspends an active candidate, remembering the prior status.
func (e *Engine) Pause(ctx context.Context, candidateID string) error {
	return e.Apply(ctx, candidateID, ActionPause)
}

// Resume restores a paused candidate to its pre-pause status.
func (e *Engine) Resume(ctx context.Context, candidateID string) error {
	return e.Apply(ctx, candidateID, ActionResume)
}

// Cancel archives a candidate. Archived is terminal.
func (e *Engine) Cancel(ctx context.Context, candidateID string) error {
	return e.Apply(ctx, candidateID, ActionCancel)
}

// ForceCall triggers an immediate out-of-band contact attempt for a paused
// candidate without changing its status.
func (e *Engine) ForceCall(ctx context.Context, candidateID string) error {
	return e.Apply(ctx, candidateID, ActionForceCall)
}

// SkipToScreening advances a candidate straight to screening.
func (e *Engine) SkipToScreening(ctx context.Context, candidateID string) error {
	return e.Apply(ctx, candidateID, ActionSkipToScreening)
}

// Candidate returns a candidate by id.
func (e *Engine) Candidate(candidateID string) (*models.WorkflowCandidate, error) {
	return e.store.GetCandidate(candidateID)
}

// CandidatesByProject lists a project's pipeline, best match first.
func (e *Engine) CandidatesByProject(projectID string) ([]*models.WorkflowCandidate, error) {
	return e.store.ListCandidatesByProject(projectID)
}

// OutboundSent is the dispatcher callback for a successfully sent message.
// It updates the candidate's last-message fields and advances a pending
// candidate to contacted.
func (e *Engine) OutboundSent(projectID, cvID, body string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := e.store.GetProjectCandidate(projectID, cvID)
	if err != nil {
		// Messages may be sent to CVs that were never graduated.
		return
	}

	if err := e.store.UpdateCandidateLastMessage(projectID, cvID, at, snippet(body)); err != nil {
		e.log.Warn("failed to record last message", zap.String("cv_id", cvID), zap.Error(err))
		return
	}

	if candidate.Status == models.StatusPending {
		if err := e.store.UpdateCandidateStatus(projectID, cvID, models.StatusContacted, ""); err != nil {
			e.log.Warn("failed to advance candidate to contacted", zap.String("cv_id", cvID), zap.Error(err))
			return
		}
		e.log.Info("candidate contacted", zap.String("cv_id", cvID), zap.String("project_id", projectID))
	}
}

// InboundReceived is the poller callback for an inbound reply. A candidate
// in contacted moves to replied; this is the only transition driven by the
// polling path rather than an explicit action.
func (e *Engine) InboundReceived(projectID, cvID, body string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := e.store.GetProjectCandidate(projectID, cvID)
	if err != nil {
		return
	}

	if err := e.store.UpdateCandidateLastMessage(projectID, cvID, at, snippet(body)); err != nil {
		e.log.Warn("failed to record inbound message", zap.String("cv_id", cvID), zap.Error(err))
	}

	if candidate.Status == models.StatusContacted {
		if err := e.store.UpdateCandidateStatus(projectID, cvID, models.StatusReplied, ""); err != nil {
			e.log.Warn("failed to mark candidate replied", zap.String("cv_id", cvID), zap.Error(err))
			return
		}
		e.log.Info("candidate replied", zap.String("cv_id", cvID), zap.String("project_id", projectID))
	}
}

const snippetLen = 50

func snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetLen {
		return body
	}
	return string(runes[:snippetLen])
}
