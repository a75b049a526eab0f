package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentreach/pkg/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite handle with typed accessors for the application's
// collections. Callers hold a Store reference; there is no package-level
// database state.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Workflow candidate operations

func (s *Store) CreateCandidate(c *models.WorkflowCandidate) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = models.StatusPending
	}

	query := `INSERT INTO workflow_candidates
		(id, project_id, name, phone, email, match_score, status, pre_pause_status, last_message_snippet, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, c.ID, c.ProjectID, c.Name, c.Phone, c.Email,
		c.MatchScore, string(c.Status), string(c.PrePauseStatus), c.LastMessageSnippet,
		c.CreatedAt, c.UpdatedAt)
	return err
}

func scanCandidate(row interface{ Scan(...any) error }) (*models.WorkflowCandidate, error) {
	c := &models.WorkflowCandidate{}
	var status, prePause string
	var lastAt sql.NullTime
	var phone, email, snippet sql.NullString
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &phone, &email, &c.MatchScore,
		&status, &prePause, &lastAt, &snippet, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Email = email.String
	c.LastMessageSnippet = snippet.String
	c.Status = models.WorkflowStatus(status)
	c.PrePauseStatus = models.WorkflowStatus(prePause)
	if lastAt.Valid {
		t := lastAt.Time
		c.LastMessageAt = &t
	}
	return c, nil
}

const candidateColumns = `id, project_id, name, phone, email, match_score,
	status, pre_pause_status, last_message_at, last_message_snippet, created_at, updated_at`

// GetCandidate looks up a candidate by id across projects. Candidate ids are
// cv ids, which are unique per pipeline in practice.
func (s *Store) GetCandidate(id string) (*models.WorkflowCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM workflow_candidates WHERE id = ? LIMIT 1`
	c, err := scanCandidate(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Store) GetProjectCandidate(projectID, id string) (*models.WorkflowCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM workflow_candidates WHERE project_id = ? AND id = ?`
	c, err := scanCandidate(s.db.QueryRow(query, projectID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Store) ListCandidatesByProject(projectID string) ([]*models.WorkflowCandidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM workflow_candidates
		WHERE project_id = ? ORDER BY match_score DESC, created_at ASC`
	rows, err := s.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WorkflowCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCandidateStatus moves a candidate to a new status and records the
// pre-pause status (empty string clears it).
func (s *Store) UpdateCandidateStatus(projectID, id string, status, prePause models.WorkflowStatus) error {
	query := `UPDATE workflow_candidates SET status = ?, pre_pause_status = ?, updated_at = ?
		WHERE project_id = ? AND id = ?`
	res, err := s.db.Exec(query, string(status), string(prePause), time.Now().UTC(), projectID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateCandidateLastMessage(projectID, id string, at time.Time, snippet string) error {
	query := `UPDATE workflow_candidates SET last_message_at = ?, last_message_snippet = ?, updated_at = ?
		WHERE project_id = ? AND id = ?`
	_, err := s.db.Exec(query, at, snippet, time.Now().UTC(), projectID, id)
	return err
}

// FindCandidateByPhone resolves an inbound sender to a candidate. Stored
// numbers come in mixed formats, so comparison happens on normalized digits.
func (s *Store) FindCandidateByPhone(projectID, phone string) (*models.WorkflowCandidate, error) {
	want := normalizePhoneDigits(phone)
	if want == "" {
		return nil, ErrNotFound
	}

	candidates, err := s.ListCandidatesByProject(projectID)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		have := normalizePhoneDigits(c.Phone)
		if have == "" {
			continue
		}
		if have == want || suffixMatch(have, want) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func normalizePhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// suffixMatch compares the last 10 digits so numbers with and without a
// country code still line up.
func suffixMatch(a, b string) bool {
	if len(a) > 10 {
		a = a[len(a)-10:]
	}
	if len(b) > 10 {
		b = b[len(b)-10:]
	}
	return a != "" && a == b
}

// Message operations

func (s *Store) CreateMessage(m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO messages
		(id, project_id, cv_id, type, direction, status, from_address, to_address, subject, body,
		 template_id, provider_message_id, error_message, sent_at, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, m.ID, m.ProjectID, m.CVID, string(m.Type), string(m.Direction),
		string(m.Status), m.FromAddress, m.ToAddress, m.Subject, m.Body,
		m.TemplateID, m.ProviderMessageID, m.ErrorMessage, nullTime(m.SentAt), nullTime(m.DeliveredAt), m.CreatedAt)
	return err
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

const messageColumns = `id, project_id, cv_id, type, direction, status, from_address, to_address,
	subject, body, template_id, provider_message_id, error_message, sent_at, delivered_at, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	m := &models.Message{}
	var typ, direction, status string
	var cvID, from, subject, templateID, providerID, errMsg sql.NullString
	var sentAt, deliveredAt sql.NullTime
	err := row.Scan(&m.ID, &m.ProjectID, &cvID, &typ, &direction, &status, &from, &m.ToAddress,
		&subject, &m.Body, &templateID, &providerID, &errMsg, &sentAt, &deliveredAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.CVID = cvID.String
	m.FromAddress = from.String
	m.Subject = subject.String
	m.TemplateID = templateID.String
	m.ProviderMessageID = providerID.String
	m.ErrorMessage = errMsg.String
	m.Type = models.MessageType(typ)
	m.Direction = models.MessageDirection(direction)
	m.Status = models.MessageStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		m.SentAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		m.DeliveredAt = &t
	}
	return m, nil
}

func (s *Store) GetMessage(id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	m, err := scanMessage(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *Store) ListMessagesByCV(cvID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE cv_id = ? ORDER BY created_at DESC`
	return s.listMessages(query, cvID)
}

// ListAwaiting returns outbound messages still waiting for provider
// confirmation (queued or sent with a provider id to query by).
func (s *Store) ListAwaiting(projectID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE project_id = ? AND direction = 'outbound' AND status IN ('queued', 'sent')
		AND provider_message_id IS NOT NULL AND provider_message_id != ''`
	return s.listMessages(query, projectID)
}

func (s *Store) CountAwaiting(projectID string) (int, error) {
	query := `SELECT COUNT(*) FROM messages
		WHERE project_id = ? AND direction = 'outbound' AND status IN ('queued', 'sent')
		AND provider_message_id IS NOT NULL AND provider_message_id != ''`
	var n int
	err := s.db.QueryRow(query, projectID).Scan(&n)
	return n, err
}

func (s *Store) listMessages(query string, args ...any) ([]*models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkMessageSent records provider acceptance. Only a queued message can
// become sent.
func (s *Store) MarkMessageSent(id, providerMessageID string, at time.Time) error {
	query := `UPDATE messages SET status = 'sent', provider_message_id = ?, sent_at = ?
		WHERE id = ? AND status = 'queued'`
	return s.execForward(query, providerMessageID, at, id)
}

// MarkMessageFailed records a failure. Allowed from any non-terminal
// outbound state.
func (s *Store) MarkMessageFailed(id, errorMessage string) error {
	query := `UPDATE messages SET status = 'failed', error_message = ?
		WHERE id = ? AND status IN ('queued', 'sent')`
	return s.execForward(query, errorMessage, id)
}

// MarkMessageDelivered records provider-confirmed delivery.
func (s *Store) MarkMessageDelivered(id string, at time.Time) error {
	query := `UPDATE messages SET status = 'delivered', delivered_at = ?
		WHERE id = ? AND status IN ('queued', 'sent')`
	return s.execForward(query, at, id)
}

// execForward applies a guarded status update. The WHERE clause enforces the
// forward-only transition rule; a no-op update means the message either does
// not exist or is already terminal.
func (s *Store) execForward(query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("message status not updated: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) MessageExistsByProviderID(providerMessageID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE provider_message_id = ?)`
	err := s.db.QueryRow(query, providerMessageID).Scan(&exists)
	return exists, err
}

// DNC operations

// InsertDNC adds an entry, ignoring duplicates for the same (type, value).
// Reports whether a new row was inserted.
func (s *Store) InsertDNC(e *models.DNCEntry) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `INSERT OR IGNORE INTO dnc_registry (id, type, value, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query, e.ID, string(e.Type), e.Value, string(e.Reason), e.CreatedAt)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) DeleteDNC(t models.DNCType, value string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM dnc_registry WHERE type = ? AND value = ?`, string(t), value)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) DNCExists(t models.DNCType, value string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM dnc_registry WHERE type = ? AND value = ?)`
	err := s.db.QueryRow(query, string(t), value).Scan(&exists)
	return exists, err
}

func (s *Store) ListDNC() ([]*models.DNCEntry, error) {
	query := `SELECT id, type, value, reason, created_at FROM dnc_registry ORDER BY created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DNCEntry
	for rows.Next() {
		e := &models.DNCEntry{}
		var typ, reason string
		if err := rows.Scan(&e.ID, &typ, &e.Value, &reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = models.DNCType(typ)
		e.Reason = models.DNCReason(reason)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Template operations

func (s *Store) CreateTemplate(t *models.MessageTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.IsDefault {
		if err := clearDefault(tx, t.ProjectID, t.Type); err != nil {
			return err
		}
	}

	query := `INSERT INTO message_templates (id, project_id, name, type, subject, body, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(query, t.ID, t.ProjectID, t.Name, string(t.Type), t.Subject, t.Body,
		t.IsDefault, t.CreatedAt, t.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdateTemplate(t *models.MessageTemplate) error {
	t.UpdatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.IsDefault {
		if err := clearDefault(tx, t.ProjectID, t.Type); err != nil {
			return err
		}
	}

	query := `UPDATE message_templates SET name = ?, subject = ?, body = ?, is_default = ?, updated_at = ?
		WHERE id = ?`
	res, err := tx.Exec(query, t.Name, t.Subject, t.Body, t.IsDefault, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// clearDefault keeps at most one default template per (project, type).
func clearDefault(tx *sql.Tx, projectID string, t models.MessageType) error {
	_, err := tx.Exec(`UPDATE message_templates SET is_default = 0 WHERE project_id = ? AND type = ?`,
		projectID, string(t))
	return err
}

func (s *Store) DeleteTemplate(id string) error {
	res, err := s.db.Exec(`DELETE FROM message_templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const templateColumns = `id, project_id, name, type, subject, body, is_default, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*models.MessageTemplate, error) {
	t := &models.MessageTemplate{}
	var typ string
	var subject sql.NullString
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &typ, &subject, &t.Body,
		&t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Subject = subject.String
	t.Type = models.MessageType(typ)
	return t, nil
}

func (s *Store) GetTemplate(id string) (*models.MessageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM message_templates WHERE id = ?`
	t, err := scanTemplate(s.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Store) ListTemplatesByProject(projectID string) ([]*models.MessageTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM message_templates
		WHERE project_id = ? ORDER BY created_at ASC`
	rows, err := s.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MessageTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Job description and CV operations. Skill lists are stored as JSON in TEXT
// columns.

func (s *Store) CreateJD(jd *models.JobDescription) error {
	if jd.ID == "" {
		jd.ID = uuid.NewString()
	}
	if jd.CreatedAt.IsZero() {
		jd.CreatedAt = time.Now().UTC()
	}

	required, err := json.Marshal(jd.RequiredSkills)
	if err != nil {
		return err
	}
	preferred, err := json.Marshal(jd.PreferredSkills)
	if err != nil {
		return err
	}
	expanded, err := json.Marshal(jd.ExpandedSkills)
	if err != nil {
		return err
	}

	query := `INSERT INTO job_descriptions (id, title, company, required_json, preferred_json, expanded_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, jd.ID, jd.Title, jd.Company, string(required), string(preferred), string(expanded), jd.CreatedAt)
	return err
}

// UpdateJDExpandedSkills attaches generated skill expansions to a JD.
func (s *Store) UpdateJDExpandedSkills(id string, expanded []models.ExpandedSkill) error {
	data, err := json.Marshal(expanded)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE job_descriptions SET expanded_json = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetJD(id string) (*models.JobDescription, error) {
	jd := &models.JobDescription{}
	var company sql.NullString
	var required, preferred, expanded sql.NullString
	query := `SELECT id, title, company, required_json, preferred_json, expanded_json, created_at
		FROM job_descriptions WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(&jd.ID, &jd.Title, &company, &required, &preferred, &expanded, &jd.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	jd.Company = company.String
	if required.String != "" {
		if err := json.Unmarshal([]byte(required.String), &jd.RequiredSkills); err != nil {
			return nil, fmt.Errorf("decode required skills: %w", err)
		}
	}
	if preferred.String != "" {
		if err := json.Unmarshal([]byte(preferred.String), &jd.PreferredSkills); err != nil {
			return nil, fmt.Errorf("decode preferred skills: %w", err)
		}
	}
	if expanded.String != "" {
		if err := json.Unmarshal([]byte(expanded.String), &jd.ExpandedSkills); err != nil {
			return nil, fmt.Errorf("decode expanded skills: %w", err)
		}
	}
	return jd, nil
}

func (s *Store) ListJDs() ([]*models.JobDescription, error) {
	rows, err := s.db.Query(`SELECT id FROM job_descriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*models.JobDescription, 0, len(ids))
	for _, id := range ids {
		jd, err := s.GetJD(id)
		if err != nil {
			return nil, err
		}
		out = append(out, jd)
	}
	return out, nil
}

func (s *Store) CreateCV(cv *models.CandidateCV) error {
	if cv.ID == "" {
		cv.ID = uuid.NewString()
	}
	if cv.CreatedAt.IsZero() {
		cv.CreatedAt = time.Now().UTC()
	}

	skills, err := json.Marshal(cv.Skills)
	if err != nil {
		return err
	}

	query := `INSERT INTO cvs (id, name, email, phone, skills_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, cv.ID, cv.Name, cv.Email, cv.Phone, string(skills), cv.CreatedAt)
	return err
}

func (s *Store) GetCV(id string) (*models.CandidateCV, error) {
	cv := &models.CandidateCV{}
	var email, phone, skills sql.NullString
	query := `SELECT id, name, email, phone, skills_json, created_at FROM cvs WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(&cv.ID, &cv.Name, &email, &phone, &skills, &cv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cv.Email = email.String
	cv.Phone = phone.String
	if skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &cv.Skills); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
	}
	return cv, nil
}

func (s *Store) ListCVs() ([]*models.CandidateCV, error) {
	rows, err := s.db.Query(`SELECT id FROM cvs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*models.CandidateCV, 0, len(ids))
	for _, id := range ids {
		cv, err := s.GetCV(id)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, nil
}
