package app

import (
	"fmt"

	"talentreach/internal/matcher"
	"talentreach/pkg/models"
)

// MatchCVs scores the named CVs against a job description. Results are a
// pure function of the current JD and CV data; the batch is kept in memory
// for GetMatchResults and never persisted.
func (a *App) MatchCVs(jdID string, cvIDs []string) ([]models.MatchResult, error) {
	if jdID == "" {
		return nil, fmt.Errorf("job description id is required: %w", ErrValidation)
	}

	jd, err := a.Store.GetJD(jdID)
	if err != nil {
		return nil, fmt.Errorf("load job description: %w", err)
	}

	var cvs []*models.CandidateCV
	if len(cvIDs) == 0 {
		cvs, err = a.Store.ListCVs()
		if err != nil {
			return nil, fmt.Errorf("list cvs: %w", err)
		}
	} else {
		for _, id := range cvIDs {
			cv, err := a.Store.GetCV(id)
			if err != nil {
				return nil, fmt.Errorf("load cv %s: %w", id, err)
			}
			cvs = append(cvs, cv)
		}
	}

	results := matcher.ScoreBatch(cvs, jd)

	a.matchMu.Lock()
	a.matches[jdID] = results
	a.matchMu.Unlock()

	return results, nil
}

// GetMatchResults returns the last batch computed for a JD, or nil if no
// batch has been computed this session.
func (a *App) GetMatchResults(jdID string) []models.MatchResult {
	a.matchMu.Lock()
	defer a.matchMu.Unlock()
	return a.matches[jdID]
}
