package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/attribution"
	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/SergeiKhy/utm-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// stubLocator тестовая геолокация
type stubLocator struct {
	loc   attribution.Location
	err   error
	block bool
	calls atomic.Int32
}

func (s *stubLocator) Locate(ctx context.Context, ip string) (attribution.Location, error) {
	s.calls.Add(1)
	if s.block {
		<-ctx.Done()
		return attribution.Location{}, ctx.Err()
	}
	return s.loc, s.err
}

type processorEnv struct {
	processor service.ClickProcessor
	links     *mocks.MockLinkRepository
	clicks    *mocks.MockClickRepository
	link      *models.Link
}

func setupProcessor(t *testing.T, locator attribution.Locator, cfg service.ClickProcessorConfig) *processorEnv {
	t.Helper()
	env := &processorEnv{
		links:  mocks.NewMockLinkRepository(),
		clicks: mocks.NewMockClickRepository(),
	}
	env.link = seedLink(t, env.links, alice.UserID)
	logger, _ := zap.NewDevelopment()
	clickSvc := service.NewClickService(env.clicks, env.links, logger)
	env.processor = service.NewClickProcessor(clickSvc, locator, cfg, logger)
	return env
}

// record отправляет событие и дожидается обработки через Stop
func (env *processorEnv) record(t *testing.T, ip, ua string) models.Click {
	t.Helper()
	env.processor.Start()
	require.NoError(t, env.processor.RecordClick(context.Background(), &models.ClickEvent{
		LinkID:    env.link.ID,
		Slug:      env.link.Slug,
		IPAddress: ip,
		UserAgent: ua,
		Referer:   "https://facebook.com/",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, env.processor.Stop(ctx))

	stored := env.clicks.All()
	require.Len(t, stored, 1)
	return stored[0]
}

func TestClickProcessor_RecordsAttributedClick(t *testing.T) {
	locator := &stubLocator{loc: attribution.Location{
		Country: "France", CountryCode: "FR", Region: "Île-de-France", City: "Paris",
	}}
	env := setupProcessor(t, locator, service.ClickProcessorConfig{Workers: 2, BufferSize: 10})

	click := env.record(t, "81.250.0.1", iphoneUA)

	assert.Equal(t, "France", click.Country)
	assert.Equal(t, "FR", click.CountryCode)
	assert.Equal(t, "Paris", click.City)
	assert.Equal(t, attribution.DeviceMobile, click.DeviceType)
	assert.Equal(t, "https://facebook.com/", click.Referer)
	assert.Equal(t, "81.250.0.1", click.IPAddress)

	link, err := env.links.GetByID(context.Background(), env.link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
}

// TestClickProcessor_GeoFailure ошибка геолокации даёт unknown во всех полях
func TestClickProcessor_GeoFailure(t *testing.T) {
	locator := &stubLocator{err: errors.New("timeout")}
	env := setupProcessor(t, locator, service.ClickProcessorConfig{Workers: 1, BufferSize: 10})

	click := env.record(t, "8.8.8.8", iphoneUA)

	assert.Equal(t, "unknown", click.Country)
	assert.Equal(t, "unknown", click.CountryCode)
	assert.Equal(t, "unknown", click.Region)
	assert.Equal(t, "unknown", click.City)
	assert.Equal(t, attribution.DeviceMobile, click.DeviceType)
	assert.Equal(t, int32(1), locator.calls.Load())
}

func TestClickProcessor_LoopbackSkipsLocator(t *testing.T) {
	locator := &stubLocator{loc: attribution.Location{Country: "France"}}
	env := setupProcessor(t, locator, service.ClickProcessorConfig{Workers: 1, BufferSize: 10})

	click := env.record(t, "127.0.0.1", "")

	assert.Equal(t, "unknown", click.Country)
	assert.Equal(t, attribution.DeviceDesktop, click.DeviceType)
	assert.Zero(t, locator.calls.Load())
}

// TestClickProcessor_QueueFull переполнение буфера не блокирует вызывающего
func TestClickProcessor_QueueFull(t *testing.T) {
	env := setupProcessor(t, nil, service.ClickProcessorConfig{Workers: 1, BufferSize: 1, EnqueueWait: 0})

	event := &models.ClickEvent{LinkID: env.link.ID, Slug: env.link.Slug}
	require.NoError(t, env.processor.RecordClick(context.Background(), event))

	start := time.Now()
	err := env.processor.RecordClick(context.Background(), &models.ClickEvent{LinkID: env.link.ID})
	assert.ErrorIs(t, err, service.ErrQueueFull)
	assert.Less(t, time.Since(start), time.Second)

	stats := env.processor.QueueStats()
	assert.Equal(t, 1, stats.BufferSize)
	assert.Equal(t, 1, stats.BufferUsed)
	assert.Equal(t, int64(1), stats.Dropped)
}

func TestClickProcessor_QueueFull_WaitsBeforeDrop(t *testing.T) {
	env := setupProcessor(t, nil, service.ClickProcessorConfig{Workers: 1, BufferSize: 1, EnqueueWait: 20 * time.Millisecond})

	require.NoError(t, env.processor.RecordClick(context.Background(), &models.ClickEvent{LinkID: env.link.ID}))
	err := env.processor.RecordClick(context.Background(), &models.ClickEvent{LinkID: env.link.ID})
	assert.ErrorIs(t, err, service.ErrQueueFull)
}

func TestClickProcessor_RecordAfterStop(t *testing.T) {
	env := setupProcessor(t, nil, service.ClickProcessorConfig{Workers: 1, BufferSize: 10})
	env.processor.Start()
	require.NoError(t, env.processor.Stop(context.Background()))

	err := env.processor.RecordClick(context.Background(), &models.ClickEvent{LinkID: env.link.ID})
	assert.ErrorIs(t, err, service.ErrQueueFull)

	// Повторная остановка безопасна
	assert.NoError(t, env.processor.Stop(context.Background()))
}

// TestClickProcessor_StoreError ошибка записи только логируется
func TestClickProcessor_StoreError(t *testing.T) {
	env := setupProcessor(t, nil, service.ClickProcessorConfig{Workers: 1, BufferSize: 10})
	env.clicks.Err = errors.New("db down")
	env.processor.Start()

	require.NoError(t, env.processor.RecordClick(context.Background(), &models.ClickEvent{LinkID: env.link.ID}))
	require.NoError(t, env.processor.Stop(context.Background()))

	link, err := env.links.GetByID(context.Background(), env.link.ID)
	require.NoError(t, err)
	assert.Zero(t, link.ClickCount)
}

func TestClickProcessor_StopDeadline(t *testing.T) {
	locator := &stubLocator{block: true}
	env := setupProcessor(t, locator, service.ClickProcessorConfig{Workers: 1, BufferSize: 10})
	env.processor.Start()

	require.NoError(t, env.processor.RecordClick(context.Background(), &models.ClickEvent{
		LinkID:    env.link.ID,
		IPAddress: "8.8.8.8",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, env.processor.Stop(ctx), context.DeadlineExceeded)
}
