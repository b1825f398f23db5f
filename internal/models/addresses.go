package models

import (
	"database/sql/driver"
	"fmt"
	"net/mail"
	"strings"
)

// EmailAddresses — список адресов, который хранится в одной текстовой колонке
// в виде "a@x.com, b@y.com". Синтаксис адресов здесь не проверяется,
// за это отвечает ValidateAddressList перед сохранением.
type EmailAddresses []string

// ParseAddressList разбивает строку по запятым и обрезает пробелы.
// Пустая строка — пустой список.
func ParseAddressList(raw string) EmailAddresses {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(EmailAddresses, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// SerializeAddresses приводит значение к строковому представлению колонки.
// Строка возвращается как есть — так работают запросы по «сырому» значению
// (repo.List(..., to: "mail@example.com")).
func SerializeAddresses(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case EmailAddresses:
		return joinTrimmed(v)
	case []string:
		return joinTrimmed(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinTrimmed(items []string) string {
	trimmed := make([]string, len(items))
	for i, s := range items {
		trimmed[i] = strings.TrimSpace(s)
	}
	return strings.Join(trimmed, ", ")
}

// Scan реализует sql.Scanner.
func (a *EmailAddresses) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = nil
	case string:
		*a = ParseAddressList(v)
	case []byte:
		*a = ParseAddressList(string(v))
	default:
		return fmt.Errorf("unsupported type %T for EmailAddresses", value)
	}
	return nil
}

// Value реализует driver.Valuer.
func (a EmailAddresses) Value() (driver.Value, error) {
	return joinTrimmed(a), nil
}

// GormDataType подсказывает gorm тип колонки.
func (EmailAddresses) GormDataType() string { return "text" }

// String — отображаемое представление списка.
func (a EmailAddresses) String() string { return joinTrimmed(a) }

// ValidateAddressList проверяет синтаксис каждого адреса.
// Отдельная проверка перед сохранением, конвертер её не выполняет.
func ValidateAddressList(addresses []string) error {
	for _, addr := range addresses {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("only comma separated emails are allowed: %q", addr)
		}
	}
	return nil
}
