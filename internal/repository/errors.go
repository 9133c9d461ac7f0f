package repository

import "errors"

var (
	// ErrNotFound se devuelve cuando la fila buscada no existe.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate se devuelve cuando una restriccion de unicidad rechaza el insert.
	ErrDuplicate = errors.New("record already exists")
)
