package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 업스트림 호출 수
	upstreamCallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activitypal_upstream_calls_total",
			Help: "Total number of upstream nearby-search calls",
		},
	)

	// 업스트림 전송 오류 수
	upstreamErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activitypal_upstream_errors_total",
			Help: "Total number of failed upstream calls",
		},
	)

	// 검색 요청 수 (신규/이어보기)
	searchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activitypal_search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"kind", "status"},
	)

	// promo-seek 추가 라운드 수
	promoSeekRoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activitypal_promo_seek_rounds_total",
			Help: "Total number of extra promo-seek fill rounds",
		},
	)

	// fill 중단 사유별 카운트
	fillStopReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activitypal_fill_stop_reasons_total",
			Help: "Page filler stop reasons",
		},
		[]string{"reason"},
	)
)
