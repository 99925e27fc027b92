package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
)

// ContactRepository manages persistence for contacts inside lists.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	ListByList(ctx context.Context, listID string) ([]domain.Contact, error)
}

type contactRepository struct {
	db DB
}

// NewContactRepository constructs repository.
func NewContactRepository(db DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `
        id, list_id, primary_country_code, primary_contact_number,
        secondary_country_code, secondary_contact_number,
        name, email, company, extra, remarks, note, disposition, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (
            list_id, primary_country_code, primary_contact_number,
            secondary_country_code, secondary_contact_number,
            name, email, company, extra, remarks, note, disposition)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	if contact.Disposition == "" {
		contact.Disposition = domain.DispositionNew
	}
	secondaryCode, secondaryNumber := splitSecondary(contact.Secondary)
	return r.db.QueryRow(ctx, query,
		contact.ListID,
		contact.Primary.CountryCode,
		contact.Primary.Number,
		secondaryCode,
		secondaryNumber,
		contact.Name,
		contact.Email,
		contact.Company,
		contact.Extra,
		contact.Remarks,
		contact.Note,
		string(contact.Disposition),
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET
            primary_country_code=$1, primary_contact_number=$2,
            secondary_country_code=$3, secondary_contact_number=$4,
            name=$5, email=$6, company=$7, extra=$8, remarks=$9, note=$10, disposition=$11,
            updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`

	secondaryCode, secondaryNumber := splitSecondary(contact.Secondary)
	return r.db.QueryRow(ctx, query,
		contact.Primary.CountryCode,
		contact.Primary.Number,
		secondaryCode,
		secondaryNumber,
		contact.Name,
		contact.Email,
		contact.Company,
		contact.Extra,
		contact.Remarks,
		contact.Note,
		string(contact.Disposition),
		contact.ID,
	).Scan(&contact.UpdatedAt)
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM contacts WHERE id=$1`, id))
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	return scanContact(r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id=$1`, id))
}

func (r *contactRepository) ListByList(ctx context.Context, listID string) ([]domain.Contact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE list_id=$1 ORDER BY created_at`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contact)
	}
	return result, rows.Err()
}

func splitSecondary(phone *domain.Phone) (*string, *string) {
	if phone == nil {
		return nil, nil
	}
	return &phone.CountryCode, &phone.Number
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var (
		contact         domain.Contact
		secondaryCode   *string
		secondaryNumber *string
		disposition     string
	)
	if err := row.Scan(
		&contact.ID,
		&contact.ListID,
		&contact.Primary.CountryCode,
		&contact.Primary.Number,
		&secondaryCode,
		&secondaryNumber,
		&contact.Name,
		&contact.Email,
		&contact.Company,
		&contact.Extra,
		&contact.Remarks,
		&contact.Note,
		&disposition,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if secondaryCode != nil && secondaryNumber != nil {
		contact.Secondary = &domain.Phone{CountryCode: *secondaryCode, Number: *secondaryNumber}
	}
	contact.Disposition = domain.Disposition(disposition)
	return &contact, nil
}
