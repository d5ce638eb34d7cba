// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/taibuivan/storefront/internal/platform/postgres"
	"github.com/taibuivan/storefront/internal/users/auth"
)

// sortColumns maps the JSON sort fields onto users.account columns.
var sortColumns = map[string]string{
	auth.FieldMobileNumber: "mobile_number",
	auth.FieldEmail:        "email",
	auth.FieldFirstname:    "firstname",
	auth.FieldLastname:     "lastname",
	auth.FieldRole:         "role",
	"createdAt":            "created_at",
}

// # Repository Implementation

// PostgresRepository implements [Repository] on users.account.
//
// Single-account reads and writes come from the embedded
// [auth.PostgresUserRepository].
type PostgresRepository struct {
	*auth.PostgresUserRepository
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{PostgresUserRepository: auth.NewUserRepository(db)}
}

/*
List retrieves one filtered, sorted page of accounts.

Description: Runs a COUNT over the same predicate first so the caller can
build pagination metadata. Without sort terms the oldest accounts come first.

Parameters:
  - context: context.Context
  - filter: ListFilter

Returns:
  - []*auth.User: The requested page
  - int: Total matches
  - error: Database execution failures
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter) ([]*auth.User, int, error) {
	where, args := buildListPredicate(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM users.account WHERE ` + where
	if err := repository.DB().QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	if total == 0 {
		return []*auth.User{}, 0, nil
	}

	limitPosition := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM users.account WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		auth.UserColumns, where, buildOrderBy(filter), limitPosition, limitPosition+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := repository.DB().Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*auth.User, 0, filter.Limit)
	for rows.Next() {
		user, err := auth.ScanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

// buildListPredicate returns the WHERE clause and its positional arguments.
func buildListPredicate(filter ListFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.MobileNumber != "" {
		add("mobile_number", filter.MobileNumber)
	}
	if filter.Email != "" {
		add("email", filter.Email)
	}
	if filter.Firstname != "" {
		add("firstname", filter.Firstname)
	}
	if filter.Lastname != "" {
		add("lastname", filter.Lastname)
	}
	if filter.PhoneNumber != "" {
		add("phone_number", filter.PhoneNumber)
	}
	if filter.Role != "" {
		add("role", string(filter.Role))
	}
	if filter.IsMobileNumberVerified != nil {
		add("is_mobile_number_verified", *filter.IsMobileNumberVerified)
	}
	if filter.IsEmailVerified != nil {
		add("is_email_verified", *filter.IsEmailVerified)
	}
	if filter.ExcludeID != "" {
		args = append(args, filter.ExcludeID)
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "TRUE", args
	}
	return strings.Join(conditions, " AND "), args
}

// buildOrderBy renders the sort terms; unknown fields were dropped upstream
// and are skipped again here.
func buildOrderBy(filter ListFilter) string {
	terms := make([]string, 0, len(filter.Sort)+1)
	for _, sort := range filter.Sort {
		column, ok := sortColumns[sort.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if sort.Descending {
			direction = "DESC"
		}
		terms = append(terms, column+" "+direction)
	}

	if len(terms) == 0 {
		terms = append(terms, "created_at ASC")
	}
	return strings.Join(append(terms, "id ASC"), ", ")
}
