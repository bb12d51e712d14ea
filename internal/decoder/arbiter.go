package decoder

import (
	"trapwatch/internal/codes"
	"trapwatch/internal/models"
)

// SelectBest 在一个报文的多个候选结果中选出唯一结果。
// ignore 条目先剔除；其余按级别排序取最高；
// 级别相同时，非 "Device Alert" 占位的消息优先。
// 没有任何可用候选时返回 false，编排器继续尝试后续策略。
func SelectBest(results []models.DecodeResult) (models.DecodeResult, bool) {
	var best *models.DecodeResult

	for i := range results {
		r := &results[i]
		if r.Ignore {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		if r.Severity.Rank() > best.Severity.Rank() {
			best = r
			continue
		}
		if r.Severity.Rank() == best.Severity.Rank() &&
			best.Message == codes.PlaceholderDevice && r.Message != codes.PlaceholderDevice {
			best = r
		}
	}

	if best == nil {
		return models.DecodeResult{}, false
	}
	return *best, true
}
