package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
)

// Postgres SQLSTATE codes surfaced to clients.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// Classify translates a pgx error into the httpx taxonomy. The Postgres
// message is kept so clients see what the datastore reported.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &httpx.Error{Kind: httpx.ErrDuplicate, Message: pgErr.Message, Details: pgErr.Detail}
		case codeForeignKeyViolation, codeNotNullViolation, codeCheckViolation, codeInvalidText:
			return &httpx.Error{Kind: httpx.ErrValidation, Message: pgErr.Message, Details: pgErr.Detail}
		}
		return &httpx.Error{Kind: httpx.ErrUpstream, Message: pgErr.Message}
	}
	return httpx.Upstream(err)
}

// NotFoundAs replaces a not-found classification with a resource-specific message.
func NotFoundAs(err error, message string) error {
	err = Classify(err)
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Errorf(httpx.ErrNotFound, "%s", message)
	}
	return err
}
