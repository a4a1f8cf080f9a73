package service

import (
	"errors"

	"github.com/SergeiKhy/utm-tracker/internal/repository"
)

// Ошибки сервиса
var (
	ErrInvalidURL     = errors.New("невалидный URL")
	ErrInvalidInput   = errors.New("невалидные входные данные")
	ErrForbidden      = errors.New("недостаточно прав")
	ErrSlugExhausted  = errors.New("не удалось подобрать свободный slug")
	ErrQueueFull      = errors.New("очередь кликов заполнена")
	ErrUnknownCatalog = errors.New("неизвестный справочник")

	ErrLinkNotFound  = repository.ErrLinkNotFound
	ErrEntryNotFound = repository.ErrEntryNotFound
	ErrUserNotFound  = repository.ErrUserNotFound
)
