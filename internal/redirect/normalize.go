// Package redirect содержит логику обработки ссылки перехода:
// нормализацию адреса назначения, проверку по списку разрешённых доменов
// и уведомление внешнего трекера.
package redirect

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const defaultScheme = "https://"

var errEmptyHost = errors.New("empty host")

// schemePrefix совпадает с началом вида "scheme://"
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// Normalize приводит сырое значение dest к абсолютному URL со схемой http или https.
//
// Значение один раз декодируется из percent-encoding (ошибка декодирования
// игнорируется), при отсутствии схемы дополняется префиксом https://.
// Возвращает ErrEmptyDestination для пустой строки и ErrInvalidDestination,
// если результат не разбирается или схема отличается от http/https.
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyDestination
	}

	candidate := raw
	if decoded, err := url.PathUnescape(raw); err == nil {
		candidate = decoded
	}

	if !schemePrefix.MatchString(candidate) {
		candidate = defaultScheme + candidate
	}
	candidate = escapeStrayPercent(candidate)

	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidDestination, u.Scheme)
	}
	u.Scheme = scheme

	host, err := canonicalHost(u.Host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	u.Host = host

	if u.Path == "" && u.RawPath == "" && u.Opaque == "" {
		u.Path = "/"
	}
	u.RawQuery = escapeQuery(u.RawQuery)

	return u.String(), nil
}

// Hostname возвращает имя хоста нормализованного URL в нижнем регистре.
func Hostname(dest string) (string, error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	return strings.ToLower(u.Hostname()), nil
}

// canonicalHost приводит host[:port] к нижнему регистру и ASCII-форме.
func canonicalHost(hostport string) (string, error) {
	if hostport == "" {
		return "", errEmptyHost
	}

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		// порт не указан, "[::1]" остаётся в скобках
		return asciiLower(hostport)
	}
	if host == "" {
		return "", errEmptyHost
	}

	host, err = asciiLower(host)
	if err != nil {
		return "", err
	}
	if port == "" {
		if strings.Contains(host, ":") {
			return "[" + host + "]", nil
		}
		return host, nil
	}
	return net.JoinHostPort(host, port), nil
}

func asciiLower(host string) (string, error) {
	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("host %q: %w", host, err)
		}
		host = ascii
	}
	return strings.ToLower(host), nil
}

// escapeStrayPercent заменяет "%", за которым не следуют две hex-цифры, на "%25".
func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeQuery кодирует в query пробел, кавычки, угловые скобки, управляющие
// и не-ASCII байты. Существующие escape-последовательности и порядок параметров сохраняются.
func escapeQuery(q string) string {
	var b strings.Builder
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c <= ' ' || c >= 0x7f || c == '"' || c == '<' || c == '>' || c == '`' {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
