package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
)

// IdentityRepository defines persistence access for identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	CreateWithTeam(ctx context.Context, identity *domain.Identity, team *domain.Team) error
	Update(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetByPhone(ctx context.Context, phone domain.Phone) (*domain.Identity, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	MarkPhoneVerified(ctx context.Context, id string) error
	ListByCreator(ctx context.Context, creatorID string) ([]domain.Identity, error)
}

type identityRepository struct {
	db DB
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(db DB) IdentityRepository {
	return &identityRepository{db: db}
}

const identityColumns = `
        id, creator_id, name, username, email, country_code, phone_number, password_hash,
        is_phone_number_verified, is_email_verified, status, roles,
        crm_access, modify_member, skip_call, all_list_access, member_role,
        created_at, updated_at`

const insertIdentitySQL = `
        INSERT INTO identities (
            creator_id, name, username, email, country_code, phone_number, password_hash,
            is_phone_number_verified, is_email_verified, status, roles,
            crm_access, modify_member, skip_call, all_list_access, member_role)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`

func insertIdentity(ctx context.Context, q rowQuerier, identity *domain.Identity) error {
	if identity.Status == "" {
		identity.Status = domain.IdentityStatusActive
	}
	if len(identity.Roles) == 0 {
		identity.Roles = []domain.Role{domain.RoleUser}
	}
	if identity.MemberRole == "" {
		identity.MemberRole = domain.MemberRoleManager
	}
	return q.QueryRow(ctx, insertIdentitySQL,
		identity.CreatorID,
		identity.Name,
		identity.Username,
		identity.Email,
		identity.Phone.CountryCode,
		identity.Phone.Number,
		identity.PasswordHash,
		identity.IsPhoneNumberVerified,
		identity.IsEmailVerified,
		string(identity.Status),
		rolesToStrings(identity.Roles),
		identity.Capabilities.CrmAccess,
		identity.Capabilities.ModifyMember,
		identity.Capabilities.SkipCall,
		identity.Capabilities.AllListAccess,
		string(identity.MemberRole),
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	return insertIdentity(ctx, r.db, identity)
}

// CreateWithTeam inserts identity and a team it creates in one transaction. Neither row is
// kept if either insert fails.
func (r *identityRepository) CreateWithTeam(ctx context.Context, identity *domain.Identity, team *domain.Team) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertIdentity(ctx, tx, identity); err != nil {
			return err
		}
		team.CreatorID = identity.ID
		return createTeam(ctx, tx, team)
	})
}

func (r *identityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	const query = `
        UPDATE identities SET
            name=$1, username=$2, email=$3, country_code=$4, phone_number=$5, password_hash=$6,
            is_phone_number_verified=$7, is_email_verified=$8, status=$9, roles=$10,
            crm_access=$11, modify_member=$12, skip_call=$13, all_list_access=$14, member_role=$15,
            updated_at=NOW()
        WHERE id=$16
        RETURNING updated_at`

	return r.db.QueryRow(ctx, query,
		identity.Name,
		identity.Username,
		identity.Email,
		identity.Phone.CountryCode,
		identity.Phone.Number,
		identity.PasswordHash,
		identity.IsPhoneNumberVerified,
		identity.IsEmailVerified,
		string(identity.Status),
		rolesToStrings(identity.Roles),
		identity.Capabilities.CrmAccess,
		identity.Capabilities.ModifyMember,
		identity.Capabilities.SkipCall,
		identity.Capabilities.AllListAccess,
		string(identity.MemberRole),
		identity.ID,
	).Scan(&identity.UpdatedAt)
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id=$1`, id))
}

func (r *identityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE username=$1`, username))
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email=$1`, email))
}

func (r *identityRepository) GetByPhone(ctx context.Context, phone domain.Phone) (*domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE country_code=$1 AND phone_number=$2`,
		phone.CountryCode, phone.Number))
}

func (r *identityRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *identityRepository) MarkPhoneVerified(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE identities SET is_phone_number_verified=TRUE, updated_at=NOW() WHERE id=$1`, id))
}

func (r *identityRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.Identity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE creator_id=$1 ORDER BY created_at`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *identity)
	}
	return result, rows.Err()
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var (
		identity   domain.Identity
		status     string
		roles      []string
		memberRole string
	)
	if err := row.Scan(
		&identity.ID,
		&identity.CreatorID,
		&identity.Name,
		&identity.Username,
		&identity.Email,
		&identity.Phone.CountryCode,
		&identity.Phone.Number,
		&identity.PasswordHash,
		&identity.IsPhoneNumberVerified,
		&identity.IsEmailVerified,
		&status,
		&roles,
		&identity.Capabilities.CrmAccess,
		&identity.Capabilities.ModifyMember,
		&identity.Capabilities.SkipCall,
		&identity.Capabilities.AllListAccess,
		&memberRole,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	identity.Status = domain.IdentityStatus(status)
	identity.MemberRole = domain.MemberRole(memberRole)
	identity.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		identity.Roles = append(identity.Roles, domain.Role(role))
	}
	return &identity, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}
