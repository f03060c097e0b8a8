package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
)

// ErrEmailTaken is returned when a user insert violates the unique
// email constraint.
var ErrEmailTaken = errors.New("email already registered")

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *Store) UpdateUserProfile(ctx context.Context, userID, name, email string, updatedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET name = $1, email = $2, updated_at = $3 WHERE id = $4
	`, name, email, updatedAt, userID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) CreateContact(ctx context.Context, contact model.Contact) error {
	company, notes, err := marshalContactDocs(contact)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, company, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, contact.ID, contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		company, contact.Status, notes, contact.CreatedAt, contact.UpdatedAt)
	return err
}

// InsertContacts writes the batch in one round trip. Each insert is
// atomic on its own; on the first failure the count of rows already
// inserted is returned alongside the error.
func (s *Store) InsertContacts(ctx context.Context, contacts []model.Contact) (int, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, contact := range contacts {
		company, notes, err := marshalContactDocs(contact)
		if err != nil {
			return 0, err
		}
		batch.Queue(`
			INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, company, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, contact.ID, contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone,
			company, contact.Status, notes, contact.CreatedAt, contact.UpdatedAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range contacts {
		if _, err := results.Exec(); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (s *Store) ListContacts(ctx context.Context, userID string) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone, company, status, notes, created_at, updated_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]model.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (s *Store) GetContact(ctx context.Context, userID, contactID string) (model.Contact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone, company, status, notes, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`, contactID, userID)
	return scanContact(row)
}

// ContactUpdate carries the editable contact fields. The owner id is
// immutable and deliberately absent.
type ContactUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (s *Store) UpdateContactDetails(ctx context.Context, userID, contactID string, update ContactUpdate, updatedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, update.FirstName, update.LastName, update.Email, update.Phone, updatedAt, contactID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateContactStatus(ctx context.Context, userID, contactID, status string, updatedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, status, updatedAt, contactID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendNote pushes the note onto the contact's embedded notes array.
func (s *Store) AppendNote(ctx context.Context, userID, contactID string, note model.Note, updatedAt time.Time) (bool, error) {
	encoded, err := json.Marshal(note)
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts
		SET notes = notes || $1::jsonb, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, encoded, updatedAt, contactID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteContacts removes the caller's contacts along with their call
// logs and reports how many contacts were deleted.
func (s *Store) DeleteContacts(ctx context.Context, userID string, contactIDs []string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM contacts WHERE id = ANY($1) AND user_id = $2
	`, contactIDs, userID)
	if err != nil {
		return 0, err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM call_logs WHERE contact_id = ANY($1)`, contactIDs); err != nil {
		return tag.RowsAffected(), err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CreateCallLog(ctx context.Context, callLog model.CallLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO call_logs (id, contact_id, user_id, called_at, duration, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, callLog.ID, callLog.ContactID, callLog.UserID, callLog.Timestamp, callLog.Duration, callLog.Notes,
		callLog.Status, callLog.CreatedAt, callLog.UpdatedAt)
	return err
}

func (s *Store) ListCallLogsByContact(ctx context.Context, contactID string) ([]model.CallLog, error) {
	return s.listCallLogs(ctx, `contact_id = $1`, contactID)
}

func (s *Store) ListCallLogsByUser(ctx context.Context, userID string) ([]model.CallLog, error) {
	return s.listCallLogs(ctx, `user_id = $1`, userID)
}

func (s *Store) listCallLogs(ctx context.Context, where, arg string) ([]model.CallLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, contact_id, user_id, called_at, duration, notes, status, created_at, updated_at
		FROM call_logs
		WHERE `+where+`
		ORDER BY called_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	callLogs := make([]model.CallLog, 0)
	for rows.Next() {
		var callLog model.CallLog
		if err := rows.Scan(&callLog.ID, &callLog.ContactID, &callLog.UserID, &callLog.Timestamp,
			&callLog.Duration, &callLog.Notes, &callLog.Status, &callLog.CreatedAt, &callLog.UpdatedAt); err != nil {
			return nil, err
		}
		callLogs = append(callLogs, callLog)
	}
	return callLogs, rows.Err()
}

// GetSystemSettings returns the singleton "system" settings document,
// or the zero-value defaults when none has been written yet.
func (s *Store) GetSystemSettings(ctx context.Context) (model.SystemSettings, error) {
	var settings model.SystemSettings
	var updatedAt *time.Time
	var updatedBy *string
	row := s.pool.QueryRow(ctx, `
		SELECT maintenance_mode, registration_disabled, system_notice, updated_at, updated_by
		FROM settings
		WHERE type = 'system'
	`)
	err := row.Scan(&settings.MaintenanceMode, &settings.RegistrationDisabled, &settings.SystemNotice, &updatedAt, &updatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SystemSettings{}, nil
	}
	if err != nil {
		return model.SystemSettings{}, err
	}
	if updatedAt != nil {
		settings.UpdatedAt = *updatedAt
	}
	if updatedBy != nil {
		settings.UpdatedBy = *updatedBy
	}
	return settings, nil
}

func (s *Store) UpsertSystemSettings(ctx context.Context, settings model.SystemSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (type, maintenance_mode, registration_disabled, system_notice, updated_at, updated_by)
		VALUES ('system', $1, $2, $3, $4, $5)
		ON CONFLICT (type) DO UPDATE SET
			maintenance_mode = EXCLUDED.maintenance_mode,
			registration_disabled = EXCLUDED.registration_disabled,
			system_notice = EXCLUDED.system_notice,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`, settings.MaintenanceMode, settings.RegistrationDisabled, settings.SystemNotice, settings.UpdatedAt, settings.UpdatedBy)
	return err
}

func marshalContactDocs(contact model.Contact) ([]byte, []byte, error) {
	company, err := json.Marshal(contact.Company)
	if err != nil {
		return nil, nil, err
	}
	if contact.Notes == nil {
		contact.Notes = []model.Note{}
	}
	notes, err := json.Marshal(contact.Notes)
	if err != nil {
		return nil, nil, err
	}
	return company, notes, nil
}

func scanContact(row pgx.Row) (model.Contact, error) {
	var contact model.Contact
	var company, notes []byte
	err := row.Scan(&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.Phone, &company, &contact.Status, &notes, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return model.Contact{}, err
	}
	if err := json.Unmarshal(company, &contact.Company); err != nil {
		return model.Contact{}, err
	}
	if err := json.Unmarshal(notes, &contact.Notes); err != nil {
		return model.Contact{}, err
	}
	return contact, nil
}
