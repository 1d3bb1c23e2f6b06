// Package report renders a scoring result as an xlsx workbook or JSON
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Helper-Yoon/chat-analyzer/internal/ranking"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the result workbook
const (
	SheetAgentSummary   = "채팅분석_요약"
	SheetManagerSummary = "관리자_분석"
	SheetAgentMetrics   = "채팅분석_지표"
	SheetManagerMetrics = "관리자_지표"
	SheetScoreboard     = "스코어보드"
	SheetEligibility    = "적격성_판정"
	SheetNoResults      = "결과 없음"
)

// NoResultsNotice is written when no agent qualified
const NoResultsNotice = "필터 조건에 해당하는 상담사가 없어 데이터를 생성할 수 없습니다."

var summaryHeader = []any{
	"상담사명", "담당 상담 수", "담당 메시지 수", "담당 글자 수", "도움 상담 수",
	"도움 메시지 수", "도움 글자 수", "담당 정성 점수", "도움 정성 점수", "총 정성 점수",
}

var metricsHeader = []any{
	"상담사명", "도움 개입률", "개입 영향력 계수", "콘텐츠 정보 점수", "언어 깊이 점수", "신청서 링크 점수",
}

var eligibilityHeader = []any{"상담사명", "도움 개입률", "총 메시지 수", "분석 대상", "제외 사유"}

// ColumnTitles are the scoreboard titles of the ranking columns
var ColumnTitles = map[ranking.Column]string{
	ranking.OwnedChats:       "담당 상담 수",
	ranking.OwnedMessages:    "담당 메시지 수",
	ranking.OwnedChars:       "담당 글자 수",
	ranking.AssistedChats:    "도움 상담 수",
	ranking.AssistedMessages: "도움 메시지 수",
	ranking.AssistedChars:    "도움 글자 수",
	ranking.OwnedScore:       "담당 정성 점수",
	ranking.AssistScore:      "도움 정성 점수",
	ranking.TotalScore:       "총 정성 점수",
	ranking.HIR:              "도움 개입률",
	ranking.IIF:              "개입 영향력 계수",
	ranking.CIS:              "콘텐츠 정보 점수",
	ranking.DLS:              "언어 깊이 점수",
	ranking.ALS:              "신청서 링크 점수",
}

// WriteJSON writes the result as indented JSON
func WriteJSON(w io.Writer, result *types.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteWorkbook writes the result workbook. A run without eligible agents
// produces a single notice sheet.
func WriteWorkbook(w io.Writer, result *types.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &builder{f: f}
	if !result.HasResults() {
		b.sheet(SheetNoResults)
		b.row(SheetNoResults, 1, []any{"알림"})
		b.row(SheetNoResults, 2, []any{NoResultsNotice})
	} else {
		b.summary(SheetAgentSummary, result.Agents.Summary)
		if len(result.Managers.Summary) > 0 {
			b.summary(SheetManagerSummary, result.Managers.Summary)
		}
		b.metrics(SheetAgentMetrics, result.Agents.Metrics)
		if len(result.Managers.Metrics) > 0 {
			b.metrics(SheetManagerMetrics, result.Managers.Metrics)
		}
		b.scoreboard(result.Rankings)
	}
	b.eligibility(result.Eligibility)

	if b.err != nil {
		return b.err
	}
	return f.Write(w)
}

// builder writes rows until the first error
type builder struct {
	f      *excelize.File
	sheets int
	err    error
}

func (b *builder) sheet(name string) {
	if b.err != nil {
		return
	}
	if b.sheets == 0 {
		b.err = b.f.SetSheetName(b.f.GetSheetName(0), name)
	} else {
		_, b.err = b.f.NewSheet(name)
	}
	b.sheets++
}

func (b *builder) row(sheet string, n int, values []any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		b.err = err
		return
	}
	if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
		b.err = fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
}

func (b *builder) summary(sheet string, rows []types.AgentSummary) {
	b.sheet(sheet)
	b.row(sheet, 1, summaryHeader)
	for i, s := range rows {
		b.row(sheet, i+2, []any{
			s.Name, s.OwnedChats, s.OwnedMessages, s.OwnedChars, s.AssistedChats,
			s.AssistedMessages, s.AssistedChars, s.OwnedScore, s.AssistScore, s.TotalScore,
		})
	}
}

func (b *builder) metrics(sheet string, rows []types.AgentMetrics) {
	b.sheet(sheet)
	b.row(sheet, 1, metricsHeader)
	for i, m := range rows {
		b.row(sheet, i+2, []any{m.Name, m.HIR, m.IIF, m.CIS, m.DLS, m.ALS})
	}
}

// scoreboard writes a Top block and a Bottom block per ranking column
func (b *builder) scoreboard(rankings []types.Ranking) {
	b.sheet(SheetScoreboard)
	n := 1
	block := func(title string, entries []types.RankEntry) {
		b.row(SheetScoreboard, n, []any{title})
		n++
		for _, e := range entries {
			b.row(SheetScoreboard, n, []any{fmt.Sprintf("%d위", e.Position), e.Name, e.Value})
			n++
		}
		n++
	}

	for _, r := range rankings {
		title := ColumnTitles[ranking.Column(r.Column)]
		if title == "" {
			title = r.Column
		}
		block(fmt.Sprintf("--- %s Top %d ---", title, len(r.Top)), r.Top)
		block(fmt.Sprintf("--- %s Bottom %d ---", title, len(r.Bottom)), r.Bottom)
	}
}

func (b *builder) eligibility(rows []types.Eligibility) {
	if len(rows) == 0 {
		return
	}
	b.sheet(SheetEligibility)
	b.row(SheetEligibility, 1, eligibilityHeader)
	for i, e := range rows {
		eligible := "제외"
		if e.Eligible {
			eligible = "대상"
		}
		b.row(SheetEligibility, i+2, []any{e.Name, ranking.Round2(e.HIR), e.TotalMessages, eligible, e.Reason})
	}
}
