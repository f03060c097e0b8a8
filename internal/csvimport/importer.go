package csvimport

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ItIsRain/CloudLynq-Contact-V1/internal/model"
)

// ContactInserter persists a batch of contacts and reports how many
// were written before any failure.
type ContactInserter interface {
	InsertContacts(ctx context.Context, contacts []model.Contact) (int, error)
}

type Importer struct {
	store ContactInserter
}

func NewImporter(store ContactInserter) *Importer {
	return &Importer{store: store}
}

// Import parses the uploaded file content, normalizes every surviving
// row into a contact owned by ownerID and bulk-inserts the batch. The
// returned count is the number of contacts actually persisted; a file
// whose data rows all fail structural validation imports zero contacts
// without error.
func (imp *Importer) Import(ctx context.Context, ownerID, text string) (int, error) {
	doc, err := Parse(text)
	if err != nil {
		return 0, err
	}

	contacts := make([]model.Contact, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		contacts = append(contacts, normalizeRow(ownerID, row, doc.Columns))
	}
	if len(contacts) == 0 {
		return 0, nil
	}
	return imp.store.InsertContacts(ctx, contacts)
}

// normalizeRow maps the matched columns into the embedded company
// document. Person fields are left empty on purpose; they are not
// inferred from the company name. Timestamps are taken now, at
// normalization time, not when the batch is persisted.
func normalizeRow(ownerID string, values []string, columns ColumnIndex) model.Contact {
	now := time.Now().UTC()
	phone := field(values, columns.Phone)
	return model.Contact{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		FirstName: "",
		LastName:  "",
		Email:     "",
		Phone:     phone,
		Company: model.Company{
			Name:    field(values, columns.Name),
			Address: field(values, columns.Address),
			Phone:   phone,
			Website: field(values, columns.Website),
		},
		Status:    model.StatusNew,
		Notes:     []model.Note{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func field(values []string, index int) string {
	if index < 0 || index >= len(values) {
		return ""
	}
	return values[index]
}
