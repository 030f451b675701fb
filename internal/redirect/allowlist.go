package redirect

import "strings"

// Allowlist хранит разрешённые домены назначения.
// Пустой список разрешает любой домен.
type Allowlist struct {
	domains []string
}

// ParseAllowlist строит Allowlist из элементов ALLOWED_DOMAINS.
// Элементы могут содержать запятые и пробелы, пустые значения отбрасываются.
func ParseAllowlist(entries []string) Allowlist {
	var domains []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			domains = append(domains, part)
		}
	}
	return Allowlist{domains: domains}
}

// Enabled сообщает, задан ли хотя бы один домен.
func (a Allowlist) Enabled() bool {
	return len(a.domains) > 0
}

// Domains возвращает разобранный список доменов.
func (a Allowlist) Domains() []string {
	return a.domains
}

// AllowsHost проверяет имя хоста: точное совпадение или поддомен.
func (a Allowlist) AllowsHost(host string) bool {
	if !a.Enabled() {
		return true
	}
	host = strings.ToLower(host)
	for _, domain := range a.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Allows проверяет нормализованный URL назначения.
func (a Allowlist) Allows(dest string) bool {
	if !a.Enabled() {
		return true
	}
	host, err := Hostname(dest)
	if err != nil {
		return false
	}
	return a.AllowsHost(host)
}
