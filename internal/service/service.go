// Package service реализует логику панели продаж: состояние сессий и запросы к API продаж.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/sales-dashboard/internal/model"
	"github.com/mmeshcher/sales-dashboard/internal/query"
	"github.com/mmeshcher/sales-dashboard/internal/repository"
)

// FetchErrorMessage показывается пользователю при любой ошибке получения данных.
const FetchErrorMessage = "Failed to fetch sales data. Please try again."

// ErrFetchFailed возвращается действием, если запрос данных завершился ошибкой.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher описывает источник данных о продажах.
type Fetcher interface {
	FetchSales(ctx context.Context, f model.Filters) (*model.SalesResponse, error)
}

// Repository описывает контракт хранилища состояния сессий, используемый сервисом.
type Repository interface {
	Close() error
	LoadSession(ctx context.Context, id string) (*model.PageState, error)
	SaveSession(ctx context.Context, id string, ps model.PageState) error
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options задаёт параметры жизненного цикла сессий.
type Options struct {
	SessionTTL       time.Duration
	SessionRetention time.Duration
	SweepInterval    time.Duration
}

type session struct {
	// ready закрывается после восстановления состояния из хранилища.
	ready chan struct{}
	// saveMu упорядочивает сохранения состояния сессии.
	saveMu sync.Mutex

	mu        sync.Mutex
	state     query.State
	seq       uint64
	committed uint64
	loading   bool
	data      *model.SalesResponse
	errMsg    string
	lastSeen  time.Time
}

// Service содержит логику панели продаж.
type Service struct {
	repo    Repository
	fetcher Fetcher
	logger  *zap.Logger
	opts    Options
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService создаёт сервис с указанным хранилищем сессий и источником данных.
func NewService(repo Repository, fetcher Fetcher, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SessionRetention <= 0 {
		opts.SessionRetention = 7 * 24 * time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Service{
		repo:     repo,
		fetcher:  fetcher,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ensure выполняет первую загрузку данных сессии. Если данные уже есть, ничего не делает.
func (s *Service) Ensure(ctx context.Context, sessionID string) error {
	sess := s.session(ctx, sessionID)

	// Переход выполняется под sess.mu, поэтому проверка и установка loading атомарны.
	return s.dispatch(ctx, sessionID, sess, func(st query.State) (query.State, bool) {
		if sess.data != nil || sess.loading {
			return st, false
		}
		return st.Refresh(), true
	})
}

// Refresh повторно запрашивает текущую страницу.
func (s *Service) Refresh(ctx context.Context, sessionID string) error {
	return s.do(ctx, sessionID, func(st query.State) (query.State, bool) {
		return st.Refresh(), true
	})
}

// ApplyDateRange задаёт диапазон дат и возвращается на первую страницу.
func (s *Service) ApplyDateRange(ctx context.Context, sessionID, start, end string) error {
	return s.do(ctx, sessionID, func(st query.State) (query.State, bool) {
		return st.ApplyDateRange(start, end), true
	})
}

// ApplyQuickRange задаёт диапазон из последних days дней.
func (s *Service) ApplyQuickRange(ctx context.Context, sessionID string, days int) error {
	start, end := query.TrailingRange(s.now(), days)
	return s.ApplyDateRange(ctx, sessionID, start, end)
}

// ApplyFilters задаёт фильтры формы и возвращается на первую страницу.
func (s *Service) ApplyFilters(ctx context.Context, sessionID string, fs query.FilterSet) error {
	return s.do(ctx, sessionID, func(st query.State) (query.State, bool) {
		return st.ApplyFilters(fs), true
	})
}

// ClearFilters очищает фильтры формы и возвращается на первую страницу.
func (s *Service) ClearFilters(ctx context.Context, sessionID string) error {
	return s.do(ctx, sessionID, func(st query.State) (query.State, bool) {
		return st.ClearFilters(), true
	})
}

// ToggleSort переключает сортировку по колонке и возвращается на первую страницу.
func (s *Service) ToggleSort(ctx context.Context, sessionID string, column model.SortField) error {
	return s.do(ctx, sessionID, func(st query.State) (query.State, bool) {
		return st.ToggleSort(column), true
	})
}

// NextPage переходит на следующую страницу. Без токена after ничего не делает.
func (s *Service) NextPage(ctx context.Context, sessionID string) error {
	return s.do(ctx, sessionID, query.State.Next)
}

// PrevPage переходит на предыдущую страницу. На первой странице ничего не делает.
func (s *Service) PrevPage(ctx context.Context, sessionID string) error {
	return s.do(ctx, sessionID, query.State.Prev)
}

// Snapshot возвращает текущее состояние панели для отображения.
func (s *Service) Snapshot(ctx context.Context, sessionID string) model.Dashboard {
	sess := s.session(ctx, sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return model.Dashboard{
		Filters:  sess.state.Request(),
		Page:     sess.state.Page(),
		Loading:  sess.loading,
		Error:    sess.errMsg,
		Data:     sess.data,
		Cursors:  sess.state.Cursors(),
		CanNext:  sess.state.CanNext(),
		CanPrev:  sess.state.CanPrev(),
		Sequence: sess.seq,
	}
}

// RejectInput показывает пользователю сообщение о некорректном вводе.
// Зафиксированное состояние запроса и данные не меняются.
func (s *Service) RejectInput(ctx context.Context, sessionID, message string) {
	sess := s.session(ctx, sessionID)

	sess.mu.Lock()
	sess.errMsg = message
	sess.mu.Unlock()
}

func (s *Service) do(ctx context.Context, sessionID string, transition func(query.State) (query.State, bool)) error {
	return s.dispatch(ctx, sessionID, s.session(ctx, sessionID), transition)
}

// dispatch применяет переход к зафиксированному состоянию и запрашивает данные.
// Новое состояние фиксируется только при успехе и только если за это время
// не был выпущен более новый запрос.
func (s *Service) dispatch(ctx context.Context, sessionID string, sess *session, transition func(query.State) (query.State, bool)) error {
	sess.mu.Lock()
	next, ok := transition(sess.state)
	if !ok {
		sess.mu.Unlock()
		return nil
	}
	sess.seq++
	seq := sess.seq
	sess.loading = true
	sess.errMsg = ""
	sess.mu.Unlock()

	req := next.Request()
	resp, err := s.fetcher.FetchSales(ctx, req)

	sess.mu.Lock()
	if seq != sess.seq {
		latest := sess.seq
		sess.mu.Unlock()
		s.logger.Debug("discarding superseded response",
			zap.String("session", sessionID),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", latest),
		)
		return nil
	}

	sess.loading = false

	if err != nil {
		sess.errMsg = FetchErrorMessage
		sess.mu.Unlock()
		s.logger.Error("fetch sales error",
			zap.Error(err),
			zap.String("session", sessionID),
			zap.Int("page", next.Page()),
		)
		return ErrFetchFailed
	}

	sess.state = next.WithCursors(resp.Pagination)
	sess.data = resp
	sess.committed = seq
	ps := sess.state.PageState()
	sess.mu.Unlock()

	s.save(context.WithoutCancel(ctx), sessionID, sess, seq, ps)

	return nil
}

// save сохраняет зафиксированное состояние вне sess.mu.
// Состояние, уже вытесненное более новой фиксацией, не сохраняется.
func (s *Service) save(ctx context.Context, sessionID string, sess *session, seq uint64, ps model.PageState) {
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()

	sess.mu.Lock()
	stale := sess.committed != seq
	sess.mu.Unlock()
	if stale {
		return
	}

	if err := s.repo.SaveSession(ctx, sessionID, ps); err != nil {
		s.logger.Warn("save session error", zap.Error(err), zap.String("session", sessionID))
	}
}

func (s *Service) session(ctx context.Context, sessionID string) *session {
	now := s.now()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{
			ready:    make(chan struct{}),
			state:    query.Default(now),
			lastSeen: now,
		}
		s.sessions[sessionID] = sess
	}
	s.mu.Unlock()

	if ok {
		<-sess.ready
	} else {
		s.restore(context.WithoutCancel(ctx), sessionID, sess)
		close(sess.ready)
	}

	sess.mu.Lock()
	sess.lastSeen = now
	sess.mu.Unlock()

	return sess
}

// restore загружает сохранённое состояние новой сессии. Пока оно не загружено,
// остальные запросы этой сессии ждут закрытия sess.ready.
func (s *Service) restore(ctx context.Context, sessionID string, sess *session) {
	ps, err := s.repo.LoadSession(ctx, sessionID)
	switch {
	case err == nil:
		sess.mu.Lock()
		sess.state = query.Restore(*ps)
		sess.mu.Unlock()
	case !errors.Is(err, repository.ErrSessionNotFound):
		s.logger.Warn("load session error", zap.Error(err), zap.String("session", sessionID))
	}
}

// StartSessionSweeper запускает фоновое удаление неактивных сессий из памяти
// и устаревших сессий из хранилища.
func (s *Service) StartSessionSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Service) sweep(ctx context.Context) {
	now := s.now()
	idleCutoff := now.Add(-s.opts.SessionTTL)

	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := !sess.loading && sess.lastSeen.Before(idleCutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.mu.Unlock()

	purged, err := s.repo.DeleteSessionsBefore(ctx, now.Add(-s.opts.SessionRetention))
	if err != nil {
		s.logger.Warn("purge sessions error", zap.Error(err))
		return
	}

	if evicted > 0 || purged > 0 {
		s.logger.Info("sessions swept", zap.Int("evicted", evicted), zap.Int64("purged", purged))
	}
}
