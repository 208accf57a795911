// Package pg backs the credential and extinguisher stores with
// PostgreSQL through database/sql and the pgx driver.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"intellishield.dev/internal/auth"
	"intellishield.dev/internal/extinguisher"
)

type Store struct {
	db *sql.DB
}

var (
	_ auth.Store         = (*Store)(nil)
	_ extinguisher.Store = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// isUniqueViolation reports a PostgreSQL duplicate-key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) Users(ctx context.Context) auth.UserStore             { return (*pgUsers)(s) }
func (s *Store) Admins(ctx context.Context) auth.AdminStore           { return (*pgAdmins)(s) }
func (s *Store) SuperAdmins(ctx context.Context) auth.SuperAdminStore { return (*pgSupers)(s) }

type pgUsers Store

func (s *pgUsers) Create(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, username, name, mobile, doj, role, password_hash, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, u.ID, u.Username, u.Name, u.Mobile, nullTime(u.DateOfJoining), u.RoleTag, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

const userColumns = `id, username, name, mobile, coalesce(doj, '0001-01-01'::date), role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Mobile, &u.DateOfJoining, &u.RoleTag, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgUsers) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where username=$1`, username))
}

func (s *pgUsers) Find(ctx context.Context, id string) (*auth.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
}

func (s *pgUsers) List(ctx context.Context, skip, limit int) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by id offset $1 limit nullif($2, 0)`,
		normalizeSkip(skip), normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type pgAdmins Store

func (s *pgAdmins) Create(ctx context.Context, a *auth.Admin) error {
	_, err := s.db.ExecContext(ctx, `
		insert into admins(id, username, email, full_name, location, is_active, number_of_licenses, password_hash, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, a.ID, a.Username, a.Email, a.FullName, a.Location, a.Active, a.Licenses, a.PasswordHash, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

const adminColumns = `id, username, email, full_name, location, is_active, number_of_licenses, password_hash, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }) (*auth.Admin, error) {
	var a auth.Admin
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.Location, &a.Active, &a.Licenses, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *pgAdmins) FindByUsername(ctx context.Context, username string) (*auth.Admin, error) {
	return scanAdmin(s.db.QueryRowContext(ctx, `select `+adminColumns+` from admins where username=$1`, username))
}

func (s *pgAdmins) Find(ctx context.Context, id string) (*auth.Admin, error) {
	return scanAdmin(s.db.QueryRowContext(ctx, `select `+adminColumns+` from admins where id=$1`, id))
}

func (s *pgAdmins) List(ctx context.Context, skip, limit int) ([]*auth.Admin, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+adminColumns+` from admins order by id offset $1 limit nullif($2, 0)`,
		normalizeSkip(skip), normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*auth.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type pgSupers Store

func (s *pgSupers) Create(ctx context.Context, sa *auth.SuperAdmin) error {
	_, err := s.db.ExecContext(ctx, `
		insert into super_admins(id, username, password_hash, created_at)
		values ($1,$2,$3,$4)
	`, sa.ID, sa.Username, sa.PasswordHash, sa.CreatedAt)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *pgSupers) FindByUsername(ctx context.Context, username string) (*auth.SuperAdmin, error) {
	var sa auth.SuperAdmin
	err := s.db.QueryRowContext(ctx, `
		select id, username, password_hash, created_at from super_admins where username=$1
	`, username).Scan(&sa.ID, &sa.Username, &sa.PasswordHash, &sa.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

const extinguisherColumns = `id, cylinder_number, type_of_extinguisher, is_number, location_tag_number, location,
	service_provider, uom, net_weight, capacity, date_of_refilling, due_of_refilling, date_of_hpt, due_of_hpt,
	manufacturing_date, expiry_date, admin_id, created_at`

func (s *Store) CreateExtinguisher(ctx context.Context, e *extinguisher.Extinguisher) error {
	_, err := s.db.ExecContext(ctx, `
		insert into extinguishers(`+extinguisherColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, e.ID, e.CylinderNumber, e.TypeOfExtinguisher, e.ISNumber, e.LocationTagNumber, e.Location,
		e.ServiceProvider, e.UOM, e.NetWeight, e.Capacity, e.DateOfRefilling, e.DueOfRefilling,
		e.DateOfHPT, e.DueOfHPT, e.ManufacturingDate, e.ExpiryDate, e.AdminID, e.CreatedAt)
	if isUniqueViolation(err) {
		return extinguisher.ErrAlreadyExists
	}
	return err
}

func scanExtinguisher(row interface{ Scan(...any) error }) (*extinguisher.Extinguisher, error) {
	var e extinguisher.Extinguisher
	err := row.Scan(&e.ID, &e.CylinderNumber, &e.TypeOfExtinguisher, &e.ISNumber, &e.LocationTagNumber,
		&e.Location, &e.ServiceProvider, &e.UOM, &e.NetWeight, &e.Capacity, &e.DateOfRefilling,
		&e.DueOfRefilling, &e.DateOfHPT, &e.DueOfHPT, &e.ManufacturingDate, &e.ExpiryDate,
		&e.AdminID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, extinguisher.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) ExtinguisherByISNumber(ctx context.Context, isNumber string) (*extinguisher.Extinguisher, error) {
	return scanExtinguisher(s.db.QueryRowContext(ctx,
		`select `+extinguisherColumns+` from extinguishers where is_number=$1`, isNumber))
}

func (s *Store) ExtinguishersByAdmin(ctx context.Context, adminID string) ([]*extinguisher.Extinguisher, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+extinguisherColumns+` from extinguishers where admin_id=$1 order by id`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*extinguisher.Extinguisher
	for rows.Next() {
		e, err := scanExtinguisher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CountByAdmin(ctx context.Context, adminID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from extinguishers where admin_id=$1`, adminID).Scan(&count)
	return count, err
}

const inspectionColumns = `id, is_number, inspection_date, due_date, capacity_uom, weight, pressure,
	cylinder_nozzle, operating_lever, safety_pin, pressure_gauge, paint_peeled_off, presence_of_rust,
	damaged_cylinder, dent_on_body, complaints, inspectors_name, additional_info, created_at`

func (s *Store) CreateInspection(ctx context.Context, in *extinguisher.Inspection) error {
	info, err := json.Marshal(in.AdditionalInfo)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into inspections(`+inspectionColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, in.ID, in.ISNumber, in.InspectionDate, in.DueDate, in.CapacityUOM, in.Weight, in.Pressure,
		in.CylinderNozzle, in.OperatingLever, in.SafetyPin, in.PressureGauge, in.PaintPeeledOff,
		in.PresenceOfRust, in.DamagedCylinder, in.DentOnBody, in.Complaints, in.InspectorsName,
		info, in.CreatedAt)
	if isUniqueViolation(err) {
		return extinguisher.ErrAlreadyExists
	}
	return err
}

func scanInspection(row interface{ Scan(...any) error }) (*extinguisher.Inspection, error) {
	var in extinguisher.Inspection
	var info []byte
	err := row.Scan(&in.ID, &in.ISNumber, &in.InspectionDate, &in.DueDate, &in.CapacityUOM, &in.Weight,
		&in.Pressure, &in.CylinderNozzle, &in.OperatingLever, &in.SafetyPin, &in.PressureGauge,
		&in.PaintPeeledOff, &in.PresenceOfRust, &in.DamagedCylinder, &in.DentOnBody, &in.Complaints,
		&in.InspectorsName, &info, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, extinguisher.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(info) > 0 {
		if err := json.Unmarshal(info, &in.AdditionalInfo); err != nil {
			return nil, err
		}
	}
	if in.AdditionalInfo == nil {
		in.AdditionalInfo = map[string]any{}
	}
	return &in, nil
}

func (s *Store) InspectionsByISNumber(ctx context.Context, isNumber string) ([]*extinguisher.Inspection, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+inspectionColumns+` from inspections where is_number=$1 order by id`, isNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInspections(rows)
}

func (s *Store) AllInspections(ctx context.Context) ([]*extinguisher.Inspection, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+inspectionColumns+` from inspections order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInspections(rows)
}

func (s *Store) Inspection(ctx context.Context, id string) (*extinguisher.Inspection, error) {
	return scanInspection(s.db.QueryRowContext(ctx,
		`select `+inspectionColumns+` from inspections where id=$1`, id))
}

// UpdateInspectionInfo merges override keys server-side so concurrent
// merges never drop each other's keys.
func (s *Store) UpdateInspectionInfo(ctx context.Context, id string, info map[string]any) (*extinguisher.Inspection, error) {
	patch, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	return scanInspection(s.db.QueryRowContext(ctx, `
		update inspections
		set additional_info = additional_info || $2::jsonb
		where id=$1
		returning `+inspectionColumns, id, patch))
}

func (s *Store) DeleteInspection(ctx context.Context, id string) (*extinguisher.Inspection, error) {
	return scanInspection(s.db.QueryRowContext(ctx,
		`delete from inspections where id=$1 returning `+inspectionColumns, id))
}

func collectInspections(rows *sql.Rows) ([]*extinguisher.Inspection, error) {
	var out []*extinguisher.Inspection
	for rows.Next() {
		in, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func normalizeSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// normalizeLimit maps "no limit" onto 0, which the queries turn into
// limit null (all rows) via nullif.
func normalizeLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	return limit
}
