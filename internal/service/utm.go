package service

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugifyLength = 50

var (
	slugifyDisallowed = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	slugifySpaces     = regexp.MustCompile(`[\s\p{Zs}]+`)
	slugifyHyphens    = regexp.MustCompile(`-+`)
)

// Slugify превращает название из справочника в значение UTM-параметра:
// "Réseaux Sociaux" -> "reseaux_sociaux"
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		plain = strings.ToLower(text)
	}

	s := slugifyDisallowed.ReplaceAllString(plain, "")
	s = slugifySpaces.ReplaceAllString(s, "_")
	s = slugifyHyphens.ReplaceAllString(s, "_")

	if len(s) > maxSlugifyLength {
		s = s[:maxSlugifyLength]
	}
	return s
}

// UTMParams параметры, добавляемые к целевому URL
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// BuildUTMURL добавляет utm_* к целевому URL. Существующие параметры запроса
// остаются как есть и в том же порядке; уже заданный utm_* заменяется на месте,
// его повторы удаляются. utm_term и utm_content добавляются только если заданы.
func BuildUTMURL(destination string, p UTMParams) (string, error) {
	u, err := ValidateDestination(destination)
	if err != nil {
		return "", err
	}

	utm := []queryPair{
		{"utm_source", p.Source},
		{"utm_medium", p.Medium},
		{"utm_campaign", p.Campaign},
	}
	if p.Term != "" {
		utm = append(utm, queryPair{"utm_term", p.Term})
	}
	if p.Content != "" {
		utm = append(utm, queryPair{"utm_content", p.Content})
	}
	values := make(map[string]string, len(utm))
	for _, kv := range utm {
		values[kv.key] = kv.value
	}

	written := make(map[string]bool, len(values))
	pairs := make([]string, 0, len(utm))
	if u.RawQuery != "" {
		for _, pair := range strings.Split(u.RawQuery, "&") {
			key := queryKey(pair)
			value, ok := values[key]
			if !ok {
				pairs = append(pairs, pair)
				continue
			}
			if !written[key] {
				pairs = append(pairs, key+"="+url.QueryEscape(value))
				written[key] = true
			}
		}
	}
	for _, kv := range utm {
		if !written[kv.key] {
			pairs = append(pairs, kv.key+"="+url.QueryEscape(kv.value))
		}
	}

	u.RawQuery = strings.Join(pairs, "&")
	return u.String(), nil
}

type queryPair struct {
	key, value string
}

// queryKey декодированное имя параметра из сырой пары "k=v"
func queryKey(pair string) string {
	key, _, _ := strings.Cut(pair, "=")
	if decoded, err := url.QueryUnescape(key); err == nil {
		return decoded
	}
	return key
}

// ValidateDestination допускает только абсолютные http(s) URL
func ValidateDestination(destination string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(destination))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
