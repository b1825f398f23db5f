package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"mail-service/config"
	"mail-service/internal/models"

	"go.uber.org/zap"
)

const lockKey = "mail:dispatcher:lock"

// EmailSource отдаёт письма, готовые к отправке.
type EmailSource interface {
	DequeueDue(ctx context.Context, now time.Time, limit int) ([]models.Email, error)
}

// Deliverer доставляет одно письмо (рендеринг + бэкенд + лог попытки).
type Deliverer interface {
	Deliver(ctx context.Context, email *models.Email) error
}

// Locker — распределённая блокировка, чтобы два диспетчера
// не разбирали одну очередь. nil отключает блокировку.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// RefreshLock продлевает аренду; false — аренда истекла.
	RefreshLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

type Dispatcher struct {
	source    EmailSource
	deliverer Deliverer
	locker    Locker
	cfg       config.Dispatcher
	log       *zap.Logger

	// hasLock — текущее владение арендой; при потере выборка
	// приостанавливается до повторного захвата.
	hasLock atomic.Bool

	now func() time.Time
}

func New(source EmailSource, deliverer Deliverer, locker Locker, cfg config.Dispatcher, log *zap.Logger) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &Dispatcher{
		source:    source,
		deliverer: deliverer,
		locker:    locker,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Run крутит цикл обработки очереди до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("starting dispatcher",
		zap.Duration("poll_interval", d.cfg.PollInterval),
		zap.Int("concurrency", d.cfg.Concurrency),
		zap.Int("batch_size", d.cfg.BatchSize),
	)

	if d.locker != nil {
		if err := d.acquireLock(ctx); err != nil {
			return err
		}
		d.hasLock.Store(true)
		defer d.releaseLock()

		refreshCtx, cancelRefresh := context.WithCancel(ctx)
		defer cancelRefresh()
		go d.refreshLockLoop(refreshCtx)
	}

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// Потеря аренды: очередь не трогаем, пока refreshLockLoop
		// не захватит блокировку заново.
		if d.locker == nil || d.hasLock.Load() {
			if err := d.processBatch(ctx); err != nil {
				d.log.Error("failed to process batch", zap.Error(err))
			}
		}
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// processBatch выбирает пачку готовых писем и доставляет их
// пулом воркеров. Следующая выборка — только после завершения пачки,
// чтобы не выбрать письмо дважды.
func (d *Dispatcher) processBatch(ctx context.Context) error {
	emails, err := d.source.DequeueDue(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	d.log.Info("processing email batch", zap.Int("count", len(emails)))

	jobs := make(chan *models.Email)
	var wg sync.WaitGroup

	wg.Add(d.cfg.Concurrency)
	for i := 0; i < d.cfg.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for email := range jobs {
				if err := d.deliverer.Deliver(ctx, email); err != nil {
					// Deliver сам фиксирует ошибку в логе и статусе.
					d.log.Debug("delivery attempt failed",
						zap.String("id", email.ID.String()), zap.Error(err))
				}
			}
		}()
	}

	for i := range emails {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- &emails[i]:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (d *Dispatcher) acquireLock(ctx context.Context) error {
	for {
		ok, err := d.locker.AcquireLock(ctx, lockKey, d.cfg.LockTTL)
		if err != nil {
			return err
		}
		if ok {
			d.log.Info("dispatcher lock acquired")
			return nil
		}
		d.log.Info("dispatcher lock is held by another instance, waiting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.cfg.LockTTL / 2):
		}
	}
}

// refreshLockLoop продлевает аренду; при потере приостанавливает
// выборку (hasLock=false) и пытается захватить блокировку заново.
func (d *Dispatcher) refreshLockLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.LockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.hasLock.Load() {
				ok, err := d.locker.AcquireLock(ctx, lockKey, d.cfg.LockTTL)
				if err != nil {
					d.log.Error("failed to reacquire dispatcher lock", zap.Error(err))
					continue
				}
				if ok {
					d.hasLock.Store(true)
					d.log.Info("dispatcher lock reacquired")
				}
				continue
			}
			ok, err := d.locker.RefreshLock(ctx, lockKey, d.cfg.LockTTL)
			if err != nil {
				d.log.Error("failed to refresh dispatcher lock", zap.Error(err))
				continue
			}
			if !ok {
				d.hasLock.Store(false)
				d.log.Warn("dispatcher lock lost, pausing queue processing")
			}
		}
	}
}

func (d *Dispatcher) releaseLock() {
	// Потерянную аренду не трогаем: ключ мог захватить другой экземпляр.
	if !d.hasLock.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.locker.ReleaseLock(ctx, lockKey); err != nil {
		d.log.Error("failed to release dispatcher lock", zap.Error(err))
	}
}
