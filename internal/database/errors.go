package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound indica que o registro pedido não existe
	ErrNotFound = errors.New("registro não encontrado")
	// ErrUnknownUser indica uma referência a um usuário que não existe mais no banco
	// (sessão antiga depois de um reset). É recuperável: o chamador deve pedir novo login.
	ErrUnknownUser = errors.New("usuário não encontrado no banco")
	// ErrDuplicateEmail indica tentativa de cadastro com email já usado
	ErrDuplicateEmail = errors.New("email já cadastrado")
	// ErrInvalidCredentials indica email ou senha incorretos
	ErrInvalidCredentials = errors.New("email ou senha inválidos")
	// ErrInvalidAmount indica um preço negativo, NaN ou infinito
	ErrInvalidAmount = errors.New("valor inválido")
)

type violation int

const (
	noViolation violation = iota
	foreignKeyViolation
	uniqueViolation
)

// classify identifica violações de integridade pelo tipo de erro do driver
func classify(err error) violation {
	if err == nil {
		return noViolation
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return foreignKeyViolation
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return uniqueViolation
		}
		return noViolation
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code {
		case "23503":
			return foreignKeyViolation
		case "23505":
			return uniqueViolation
		}
	}
	return noViolation
}
