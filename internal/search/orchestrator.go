package search

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
)

// DebugMeta 요청 단위 진단 정보 (debug=true일 때만 응답에 포함)
type DebugMeta struct {
	StopReason string         `json:"stopReason"`
	CallsUsed  int            `json:"callsUsed"`
	Skipped    map[string]int `json:"skipped,omitempty"`
	Combos     []ComboDebug   `json:"combos"`
}

// ComboDebug 콤보별 진행 상황
type ComboDebug struct {
	PlaceType string `json:"placeType"`
	Keyword   string `json:"keyword,omitempty"`
	Pages     int    `json:"pages"`
	Exhausted bool   `json:"exhausted"`
}

// PageMeta 응답 메타 블록
type PageMeta struct {
	Cursor    *string    `json:"cursor"`
	PerPage   int        `json:"perPage"`
	HasMore   bool       `json:"hasMore"`
	ElapsedMs int64      `json:"elapsedMs"`
	Provider  string     `json:"provider"`
	Storage   string     `json:"storage"`
	QueryHash string     `json:"queryHash"`
	PageNo    int        `json:"pageNo"`
	Version   int        `json:"version"`
	Debug     *DebugMeta `json:"debug,omitempty"`
}

// Page 성공 응답
type Page struct {
	CuratedPlaces []PlaceResult `json:"curatedPlaces"`
	Meta          PageMeta      `json:"meta"`
}

// Service ties the request cycle together: cursor lifecycle, overfetch
// sizing, fill/hydrate passes, page slicing, response shaping
type Service struct {
	store       CursorStore
	lock        SessionLocker
	hydrator    *Hydrator
	norm        *Normalizer
	cfg         *config.SearchConfig
	provider    string
	storage     string
	configured  bool
	now         func() time.Time
	sleep       func(time.Duration)
}

// ServiceOptions wiring for NewService
type ServiceOptions struct {
	Store        CursorStore
	Lock         SessionLocker // nil이면 락 없이 동작
	Hydrator     *Hydrator
	Config       *config.SearchConfig
	ProviderName string
	StorageName  string
	Configured   bool // 업스트림 자격 증명 존재 여부
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		store:      opts.Store,
		lock:       opts.Lock,
		hydrator:   opts.Hydrator,
		norm:       NewNormalizer(),
		cfg:        opts.Config,
		provider:   opts.ProviderName,
		storage:    opts.StorageName,
		configured: opts.Configured,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Normalizer 핸들러에서 본문 파싱에 사용
func (s *Service) Normalizer() *Normalizer {
	return s.norm
}

// Search 한 번의 요청 사이클 실행. 신규 검색과 이어보기 모두 처리한다.
func (s *Service) Search(ctx context.Context, req *Request) (*Page, error) {
	log := logger.GetLogger("search.orchestrator")
	start := s.now()

	// 자격 증명 누락은 어떤 작업도 시작하기 전에 즉시 중단
	if !s.configured {
		searchRequestsTotal.WithLabelValues(kind(req), "error").Inc()
		return nil, ErrMissingCredential
	}

	var st *SearchState
	if req.IsContinuation() {
		if s.lock != nil {
			release, _ := s.lock.Acquire(ctx, req.Cursor)
			defer release()
		}

		loaded, err := s.store.Get(ctx, req.Cursor)
		if err != nil || loaded == nil {
			searchRequestsTotal.WithLabelValues("continuation", "error").Inc()
			return nil, &ContinuationError{Message: "unknown or expired cursor; start a new search"}
		}
		// 세션 필터는 세션 수명 동안 불변: 해시 불일치는 거부하되
		// 저장된 세션은 건드리지 않아 원래 해시로는 계속 사용 가능하다
		if req.QueryHash != "" && req.QueryHash != loaded.QueryHash {
			searchRequestsTotal.WithLabelValues("continuation", "error").Inc()
			return nil, &ContinuationError{Message: "query filters changed mid-session; start a new search"}
		}
		st = loaded
	} else {
		q, err := s.norm.Canonicalize(req)
		if err != nil {
			searchRequestsTotal.WithLabelValues("new", "error").Inc()
			return nil, err
		}
		st = NewSearchState(q)
		if err := s.store.Set(ctx, st.ID, st, s.cfg.CursorTTL); err != nil {
			// 영속화 실패는 폴백 스토어가 흡수하므로 여기 도달하면 로그만
			log.Warnf("신규 세션 저장 실패 (무시): %v", err)
		}
	}

	perPage := s.perPage(req.PerPage)
	// 의도적 overfetch: promo-seek 라운드가 추가 왕복 없이 여유분을 갖도록
	want := perPage + s.cfg.PrefetchBuffer
	budget := NewCallBudget(s.cfg.MaxCallsPerRequest)

	stats := s.hydrator.FillAndHydrate(ctx, st, want, budget)

	// 빈 페이지 가드: 결과가 더 있을 것으로 보이는데 일시적으로 0건이면
	// 가장 빨리 유효화되는 토큰을 기다렸다가 한 번만 재시도
	if len(st.Pending) == 0 && !st.AllExhausted() && budget.Remaining() > 0 {
		if wait, ok := st.MinTokenWait(s.now()); ok {
			if wait > s.cfg.EmptyPageWaitMax {
				wait = s.cfg.EmptyPageWaitMax
			}
			s.sleep(wait)
			stats.Merge(s.hydrator.FillAndHydrate(ctx, st, want, budget))
		}
	}

	fillStopReasonsTotal.WithLabelValues(stats.StopReason).Inc()

	page := st.SplicePage(perPage)
	st.PageNo++
	st.Version++
	st.UpdatedAt = s.now().UTC()

	hasMore := len(st.Pending) > 0 || !st.AllExhausted()

	var cursor *string
	if hasMore {
		if err := s.store.Set(ctx, st.ID, st, s.cfg.CursorTTL); err != nil {
			log.Warnf("세션 저장 실패 (무시): %v", err)
		}
		id := st.ID
		cursor = &id
	} else {
		// 소진 또는 drain: 커서 삭제로 세션 종료
		if err := s.store.Del(ctx, st.ID); err != nil {
			log.Warnf("세션 삭제 실패 (무시): %v", err)
		}
	}

	meta := PageMeta{
		Cursor:    cursor,
		PerPage:   perPage,
		HasMore:   hasMore,
		ElapsedMs: s.now().Sub(start).Milliseconds(),
		Provider:  s.provider,
		Storage:   s.storage,
		QueryHash: st.QueryHash,
		PageNo:    st.PageNo,
		Version:   st.Version,
	}
	if req.Debug {
		meta.Debug = s.debugMeta(st, stats, budget)
	}

	searchRequestsTotal.WithLabelValues(kind(req), "ok").Inc()

	if page == nil {
		page = []PlaceResult{}
	}
	return &Page{CuratedPlaces: page, Meta: meta}, nil
}

func (s *Service) perPage(requested int) int {
	if requested <= 0 {
		return s.cfg.DefaultPerPage
	}
	if requested > s.cfg.MaxPerPage {
		return s.cfg.MaxPerPage
	}
	return requested
}

func (s *Service) debugMeta(st *SearchState, stats *FillStats, budget *CallBudget) *DebugMeta {
	combos := make([]ComboDebug, len(st.Combos))
	for i := range st.Combos {
		combos[i] = ComboDebug{
			PlaceType: st.Combos[i].PlaceType,
			Keyword:   st.Combos[i].Keyword,
			Pages:     st.ComboMeta[i].PagesFetched,
			Exhausted: st.ComboMeta[i].Exhausted,
		}
	}
	return &DebugMeta{
		StopReason: stats.StopReason,
		CallsUsed:  budget.Used(),
		Skipped:    stats.Skipped,
		Combos:     combos,
	}
}

func kind(req *Request) string {
	if req.IsContinuation() {
		return "continuation"
	}
	return "new"
}
