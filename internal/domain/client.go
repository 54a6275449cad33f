package domain

import (
	"strings"
	"time"
)

// Client представляет зарегистрированного клиента каталога.
type Client struct {
	// ID выдаётся хранилищем (BIGSERIAL), приложение его не назначает.
	ID int64
	// Name — обязательное имя клиента.
	Name string
	// Email обязателен и уникален в пределах хранилища.
	Email string
	// RegisteredAt заполняется базой данных и не изменяется приложением.
	RegisteredAt time.Time
}

// Validate проверяет обязательные поля перед регистрацией.
func (c *Client) Validate() []error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrClientNameRequired)
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, ErrClientEmailRequired)
	}

	return errs
}
