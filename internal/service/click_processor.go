package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/attribution"
	"github.com/SergeiKhy/utm-tracker/internal/models"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	defaultEnqueueWait   = 50 * time.Millisecond
	attributionTimeout   = 10 * time.Second
)

// ClickProcessor асинхронная атрибуция кликов после редиректа
type ClickProcessor interface {
	Start()
	// Stop прекращает приём событий и ждёт обработки очереди до дедлайна ctx
	Stop(ctx context.Context) error
	RecordClick(ctx context.Context, event *models.ClickEvent) error
	QueueStats() ChannelStats
}

// ClickProcessorConfig параметры worker pool
type ClickProcessorConfig struct {
	Workers     int
	BufferSize  int
	EnqueueWait time.Duration
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clicks   ClickService
	locator  attribution.Locator
	classify func(string) attribution.Device
	logger   *zap.Logger

	clickChannel chan *models.ClickEvent // Канал для событий кликов
	workerCount  int
	enqueueWait  time.Duration
	wg           sync.WaitGroup

	mu      sync.RWMutex // защищает closed и закрытие канала
	closed  bool
	dropped atomic.Int64
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewClickProcessor создаёт новый экземпляр процессора кликов
func NewClickProcessor(
	clicks ClickService,
	locator attribution.Locator,
	cfg ClickProcessorConfig,
	logger *zap.Logger,
) ClickProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultChannelBuffer
	}
	if cfg.EnqueueWait < 0 {
		cfg.EnqueueWait = defaultEnqueueWait
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &clickProcessor{
		clicks:       clicks,
		locator:      locator,
		classify:     attribution.Classify,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, cfg.BufferSize),
		workerCount:  cfg.Workers,
		enqueueWait:  cfg.EnqueueWait,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop закрывает канал и ждёт, пока воркеры обработают оставшиеся события.
// Если ctx истёк раньше, незавершённые события теряются.
func (p *clickProcessor) Stop(ctx context.Context) error {
	p.logger.Info("Остановка процессора кликов...")

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.clickChannel)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("Процессор кликов остановлен")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("Процессор кликов остановлен до опустошения очереди",
			zap.Int("pending", len(p.clickChannel)),
		)
		return ctx.Err()
	}
}

// worker обрабатывает события кликов из канала до его закрытия
func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for event := range p.clickChannel {
		p.processClick(event)
	}

	p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
}

// processClick классификация, геолокация, запись и инкремент.
// Ошибки только логируются, повторов нет.
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, attributionTimeout)
	defer cancel()

	device := p.classify(event.UserAgent)

	click := &models.Click{
		LinkID:         event.LinkID,
		DeviceType:     device.Type,
		Browser:        device.Browser,
		BrowserVersion: device.BrowserVersion,
		OS:             device.OS,
		OSVersion:      device.OSVersion,
		Platform:       device.Vendor,
		Referer:        event.Referer,
		UserAgent:      event.UserAgent,
		IPAddress:      event.IPAddress,
	}

	loc := p.locate(ctx, event)
	click.Country = loc.Country
	click.CountryCode = loc.CountryCode
	click.Region = loc.Region
	click.City = loc.City

	if err := p.clicks.Record(ctx, click); err != nil {
		p.logger.Error("Не удалось записать клик",
			zap.String("slug", event.Slug),
			zap.Int64("link_id", event.LinkID),
			zap.Time("received_at", event.ReceivedAt),
			zap.Error(err),
		)
	}
}

func (p *clickProcessor) locate(ctx context.Context, event *models.ClickEvent) attribution.Location {
	if p.locator == nil || !attribution.ShouldLocate(event.IPAddress) {
		return attribution.UnknownLocation()
	}

	loc, err := p.locator.Locate(ctx, event.IPAddress)
	if err != nil {
		p.logger.Warn("Геолокация недоступна",
			zap.String("slug", event.Slug),
			zap.String("ip", event.IPAddress),
			zap.Time("received_at", event.ReceivedAt),
			zap.Error(err),
		)
		return attribution.UnknownLocation()
	}
	return loc
}

// RecordClick отправляет событие в worker pool. Ждёт свободного места не дольше
// enqueueWait, затем событие отбрасывается с записью в лог.
func (p *clickProcessor) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.drop(event, "процессор остановлен")
	}

	select {
	case p.clickChannel <- event:
		return nil
	default:
	}

	if p.enqueueWait <= 0 {
		return p.drop(event, "буфер заполнен")
	}

	timer := time.NewTimer(p.enqueueWait)
	defer timer.Stop()

	select {
	case p.clickChannel <- event:
		return nil
	case <-ctx.Done():
		return p.drop(event, "запрос отменён")
	case <-timer.C:
		return p.drop(event, "буфер заполнен")
	}
}

func (p *clickProcessor) drop(event *models.ClickEvent, reason string) error {
	p.dropped.Add(1)
	p.logger.Warn("Событие клика потеряно",
		zap.String("reason", reason),
		zap.String("slug", event.Slug),
		zap.Int64("link_id", event.LinkID),
		zap.Time("received_at", event.ReceivedAt),
	)
	return ErrQueueFull
}

// QueueStats возвращает статистику канала для мониторинга
func (p *clickProcessor) QueueStats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
		Dropped:     p.dropped.Load(),
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int   `json:"buffer_size"`  // Общая ёмкость канала
	BufferUsed  int   `json:"buffer_used"`  // Текущее использование
	WorkerCount int   `json:"worker_count"` // Количество воркеров
	Dropped     int64 `json:"dropped"`      // Потерянные события
}
