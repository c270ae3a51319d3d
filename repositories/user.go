package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"sign-relay/errors"
)

type IUserRepository interface {
	Create(ctx context.Context, user User) error
	GetByPhone(ctx context.Context, phone string) (User, error)
}

// User is the repository-level representation of an account.
// The password hash never leaves the service layer.
type User struct {
	Phone        string
	Username     string
	PasswordHash string
	Role         string
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return UserRepository{db: db}
}

// Create persists a new user. The phone number is the primary key,
// so a second registration with the same phone fails with ErrDuplicateID.
func (u UserRepository) Create(ctx context.Context, user User) error {
	insert := sq.Insert("users").
		Columns("phone", "username", "password_hash", "role").
		Values(user.Phone, user.Username, user.PasswordHash, user.Role)

	_, err := insert.RunWith(u.db).ExecContext(ctx)
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return errors.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("creating user %s: %w", user.Phone, err)
	}
	return nil
}

func (u UserRepository) GetByPhone(ctx context.Context, phone string) (User, error) {
	query := sq.Select("phone", "username", "password_hash", "role").
		From("users").
		Where(sq.Eq{"phone": phone})

	var user User
	row := query.RunWith(u.db).QueryRowContext(ctx)
	err := row.Scan(&user.Phone, &user.Username, &user.PasswordHash, &user.Role)
	if stderrors.Is(err, sql.ErrNoRows) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("fetching user %s: %w", phone, err)
	}
	return user, nil
}
