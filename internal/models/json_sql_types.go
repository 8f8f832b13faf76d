package models

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// NullString - обертка для sql.NullString, которая сериализуется в JSON как строка или null.
// Все 13 полей пропозиции хранятся именно так: "не задано" и "пустая строка" не различаются.
type NullString struct {
	sql.NullString
}

// NewNullString возвращает заданное значение. Пустая строка (после TrimSpace) считается null.
func NewNullString(s string) NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullString{}
	}
	return NullString{sql.NullString{String: s, Valid: true}}
}

// Null возвращает пустое значение.
func Null() NullString {
	return NullString{}
}

// ValueOr возвращает строку или fallback, если значение не задано.
func (ns NullString) ValueOr(fallback string) string {
	if !ns.Valid {
		return fallback
	}
	return ns.String
}

// MarshalJSON реализует интерфейс json.Marshaler для NullString.
func (ns NullString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.String)
}

// UnmarshalJSON реализует интерфейс json.Unmarshaler для NullString.
func (ns *NullString) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s != nil {
		ns.String = *s
		ns.Valid = true
	} else {
		ns.String = ""
		ns.Valid = false
	}
	return nil
}
