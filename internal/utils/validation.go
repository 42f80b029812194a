package utils

import (
	"fmt"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

// ValidateShiftsNoOverlap 检查同一员工同一天的多个班次之间是否有时间冲突，首尾相接不算冲突。
// 调用前每个班次都应该已经通过 Derive 校验。
func ValidateShiftsNoOverlap(shifts []*domain.Shift) error {
	for i := 0; i < len(shifts); i++ {
		iStart, iEnd, err := shifts[i].Minutes()
		if err != nil {
			return fmt.Errorf("ca %d: %w", i+1, err)
		}

		for j := i + 1; j < len(shifts); j++ {
			if shifts[i].EmployeeID != shifts[j].EmployeeID || !shifts[i].Date.Equal(shifts[j].Date) {
				continue
			}

			jStart, jEnd, err := shifts[j].Minutes()
			if err != nil {
				return fmt.Errorf("ca %d: %w", j+1, err)
			}

			if jStart < iEnd && iStart < jEnd {
				return fmt.Errorf("%w: ca %d (%s-%s) và ca %d (%s-%s)", domain.ErrOverlappingShifts,
					i+1, shifts[i].StartTime, shifts[i].EndTime, j+1, shifts[j].StartTime, shifts[j].EndTime)
			}
		}
	}
	return nil
}

// ValidateAgainstExistingShifts 检查新班次是否和已保存的班次冲突，ID 相同的视为同一个班次（更新自身）
func ValidateAgainstExistingShifts(existing, incoming []*domain.Shift) error {
	for _, s := range incoming {
		sStart, sEnd, err := s.Minutes()
		if err != nil {
			return err
		}

		for _, e := range existing {
			if e.ID == s.ID || e.EmployeeID != s.EmployeeID || !e.Date.Equal(s.Date) {
				continue
			}

			eStart, eEnd, err := e.Minutes()
			if err != nil {
				return err
			}

			if eStart < sEnd && sStart < eEnd {
				return fmt.Errorf("%w: %s-%s trùng với ca đã xếp %s-%s", domain.ErrOverlappingShifts,
					s.StartTime, s.EndTime, e.StartTime, e.EndTime)
			}
		}
	}
	return nil
}

// ValidateDateRange 要求 startDate <= endDate 且区间不超过 maxDays 天（闭区间）
func ValidateDateRange(startDate, endDate domain.Date, maxDays int) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("endDate (%s) không được trước startDate (%s)", endDate, startDate)
	}
	if startDate.AddDays(maxDays - 1).Before(endDate) {
		return fmt.Errorf("khoảng thời gian không được vượt quá %d ngày", maxDays)
	}
	return nil
}
