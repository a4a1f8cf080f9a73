package service

import (
	"context"
	"fmt"
	"math/rand/v2"
)

const (
	// Строчные буквы и цифры без i, l, o, 0, 1
	slugAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	slugLength   = 5

	maxAllocateAttempts = 10
)

// GenerateSlug возвращает случайный кандидат. Криптостойкость не нужна:
// коллизии ловятся проверкой и уникальным индексом.
func GenerateSlug() string {
	b := make([]byte, slugLength)
	for i := range b {
		b[i] = slugAlphabet[rand.IntN(len(slugAlphabet))]
	}
	return string(b)
}

// SlugChecker проверка занятости slug в хранилище
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// SlugAllocator подбирает свободный slug
type SlugAllocator struct {
	checker     SlugChecker
	generate    func() string
	maxAttempts int
}

func NewSlugAllocator(checker SlugChecker) *SlugAllocator {
	return &SlugAllocator{
		checker:     checker,
		generate:    GenerateSlug,
		maxAttempts: maxAllocateAttempts,
	}
}

// Allocate генерирует кандидатов, пока не найдёт незанятый.
// Число попыток ограничено, при исчерпании возвращается ErrSlugExhausted.
func (a *SlugAllocator) Allocate(ctx context.Context) (string, error) {
	for i := 0; i < a.maxAttempts; i++ {
		slug := a.generate()

		exists, err := a.checker.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
	}
	return "", ErrSlugExhausted
}

// BuildShortURL склеивает базовый URL, префикс /s/ и slug без нормализации
func BuildShortURL(baseURL, slug string) string {
	return baseURL + "/s/" + slug
}
