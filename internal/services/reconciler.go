package services

import (
	"context"
	"sync"
	"time"

	"chanboard/internal/models"

	"github.com/sirupsen/logrus"
)

// ScoreStore 对账器依赖的仓储接口
type ScoreStore interface {
	RepairScore(ctx context.Context, target models.VoteTarget) (bool, int, error)
	VotedTargetsSince(ctx context.Context, since time.Time) ([]models.VoteTarget, error)
}

// ScoreReconciler 后台分数对账服务
// 每次投票后把目标放入队列（排队期间去重），定时巡检上次巡检以来被投过票的目标。
// 只用投票流水的总和覆盖分数，从不做增量修改。
type ScoreReconciler struct {
	store         ScoreStore
	queue         chan models.VoteTarget
	pending       map[models.VoteTarget]bool
	mu            sync.Mutex
	batchSize     int
	flushEvery    time.Duration
	sweepInterval time.Duration
	onRepair      func(ctx context.Context, target models.VoteTarget)
	wg            sync.WaitGroup
}

func NewScoreReconciler(store ScoreStore, sweepInterval time.Duration) *ScoreReconciler {
	return &ScoreReconciler{
		store:         store,
		queue:         make(chan models.VoteTarget, 1000),
		pending:       make(map[models.VoteTarget]bool),
		batchSize:     50,
		flushEvery:    500 * time.Millisecond,
		sweepInterval: sweepInterval,
	}
}

// OnRepair 注册分数被修正后的回调，须在 Start 之前调用
func (s *ScoreReconciler) OnRepair(fn func(ctx context.Context, target models.VoteTarget)) {
	s.onRepair = fn
}

// Start 启动处理协程；sweepInterval > 0 时同时启动定时巡检
// ctx 取消后两者退出，Wait 阻塞到全部退出为止
func (s *ScoreReconciler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()

	if s.sweepInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweepLoop(ctx)
		}()
	}
}

func (s *ScoreReconciler) Wait() {
	s.wg.Wait()
}

// Schedule 将目标加入对账队列，不阻塞调用方
func (s *ScoreReconciler) Schedule(target models.VoteTarget) {
	s.mu.Lock()
	if s.pending[target] {
		s.mu.Unlock()
		return
	}
	s.pending[target] = true
	s.mu.Unlock()

	select {
	case s.queue <- target:
	default:
		s.mu.Lock()
		delete(s.pending, target)
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{"target": target.Type, "target_id": target.ID}).
			Warn("score reconcile queue full, skipping")
	}
}

func (s *ScoreReconciler) worker(ctx context.Context) {
	batch := make([]models.VoteTarget, 0, s.batchSize)
	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case target := <-s.queue:
			batch = append(batch, target)
			if len(batch) >= s.batchSize {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// processBatch 批量对账，返回被修正的数量
func (s *ScoreReconciler) processBatch(ctx context.Context, targets []models.VoteTarget) int {
	repaired := 0
	for _, target := range targets {
		if s.reconcile(ctx, target) {
			repaired++
		}

		s.mu.Lock()
		delete(s.pending, target)
		s.mu.Unlock()
	}
	return repaired
}

func (s *ScoreReconciler) reconcile(ctx context.Context, target models.VoteTarget) bool {
	log := logrus.WithFields(logrus.Fields{"target": target.Type, "target_id": target.ID})

	repaired, score, err := s.store.RepairScore(ctx, target)
	if err != nil {
		// 入队后目标可能已被删除
		log.WithError(err).Debug("score reconcile skipped")
		return false
	}
	if !repaired {
		return false
	}

	log.WithField("score", score).Info("repaired drifted vote score")
	if s.onRepair != nil {
		s.onRepair(ctx, target)
	}
	return true
}

func (s *ScoreReconciler) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(ctx, last)
			last = now
		}
	}
}

// Sweep 对 since 之后被投过票的所有目标对账，返回修正数量
func (s *ScoreReconciler) Sweep(ctx context.Context, since time.Time) int {
	targets, err := s.store.VotedTargetsSince(ctx, since)
	if err != nil {
		logrus.WithError(err).Error("score sweep failed")
		return 0
	}

	logrus.WithField("targets", len(targets)).Info("starting vote score sweep")
	repaired := 0
	for _, target := range targets {
		if s.reconcile(ctx, target) {
			repaired++
		}
	}
	logrus.WithFields(logrus.Fields{"targets": len(targets), "repaired": repaired}).Info("vote score sweep finished")
	return repaired
}
