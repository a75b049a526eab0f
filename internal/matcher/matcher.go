package matcher

import (
	"math"
	"sort"
	"time"

	"talentreach/pkg/models"
)

const (
	requiredWeight  = 0.7
	preferredWeight = 0.3
)

// findMatch checks whether a JD skill requirement is covered by any CV skill.
// Expanded skill variants generated for the JD are the primary source, the
// static synonym table the fallback. Returns the matching CV skill, or "".
func findMatch(req models.SkillRequirement, cvSkills []string, expanded []models.ExpandedSkill) string {
	normalizedReq := Normalize(req.Skill)

	for _, es := range expanded {
		if Normalize(es.Skill) != normalizedReq {
			continue
		}
		union := make(map[string]bool, 1+len(es.Variants)+len(es.RelatedTools))
		union[Normalize(es.Skill)] = true
		for _, v := range es.Variants {
			union[Normalize(v)] = true
		}
		for _, t := range es.RelatedTools {
			union[Normalize(t)] = true
		}
		for _, cvSkill := range cvSkills {
			if union[cvSkill] {
				return cvSkill
			}
		}
		break
	}

	for _, cvSkill := range cvSkills {
		if SkillsMatch(normalizedReq, cvSkill) {
			return cvSkill
		}
	}

	return ""
}

// Score calculates the match between a CV and a job description.
//
// Required skills carry 70% of the score, preferred skills 30%. A category
// with no requirements contributes its full weight rather than zero.
func Score(cv *models.CandidateCV, jd *models.JobDescription) models.MatchResult {
	cvSkills := make([]string, 0, len(cv.Skills))
	for _, s := range cv.Skills {
		cvSkills = append(cvSkills, Normalize(s))
	}

	var matched, missingRequired, missingPreferred []string

	matchedRequired := 0
	for _, req := range jd.RequiredSkills {
		if m := findMatch(req, cvSkills, jd.ExpandedSkills); m != "" {
			matched = append(matched, req.Skill)
			matchedRequired++
		} else {
			missingRequired = append(missingRequired, req.Skill)
		}
	}

	matchedPreferred := 0
	for _, pref := range jd.PreferredSkills {
		if m := findMatch(pref, cvSkills, jd.ExpandedSkills); m != "" {
			matched = append(matched, pref.Skill)
			matchedPreferred++
		} else {
			missingPreferred = append(missingPreferred, pref.Skill)
		}
	}

	requiredScore := requiredWeight
	if len(jd.RequiredSkills) > 0 {
		requiredScore = float64(matchedRequired) / float64(len(jd.RequiredSkills)) * requiredWeight
	}

	preferredScore := preferredWeight
	if len(jd.PreferredSkills) > 0 {
		preferredScore = float64(matchedPreferred) / float64(len(jd.PreferredSkills)) * preferredWeight
	}

	score := int(math.Round((requiredScore + preferredScore) * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.MatchResult{
		CVID:             cv.ID,
		JDID:             jd.ID,
		MatchScore:       score,
		MatchedSkills:    matched,
		MissingRequired:  missingRequired,
		MissingPreferred: missingPreferred,
		CalculatedAt:     time.Now().UTC(),
	}
}

// ScoreBatch scores multiple CVs against one job description, sorted by
// score descending. Ties keep input order.
func ScoreBatch(cvs []*models.CandidateCV, jd *models.JobDescription) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(cvs))
	for _, cv := range cvs {
		results = append(results, Score(cv, jd))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results
}

// Quality maps a match score to a human-readable band.
func Quality(score int) string {
	switch {
	case score >= 75:
		return "Strong"
	case score >= 50:
		return "Good"
	case score >= 25:
		return "Partial"
	default:
		return "Weak"
	}
}
