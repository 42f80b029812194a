package seed

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// Store 是写入种子数据需要的仓储操作，*repository.Repository 实现了它
type Store interface {
	CreateEmployee(employee *domain.Employee) error
	GetEmployeeByUsername(username string) (*domain.Employee, error)
	GetAllEmployees() ([]*domain.Employee, error)
	UpsertShiftPreference(p *domain.ShiftPreference) (bool, error)
	UpsertRevenueEstimates(estimates []*domain.RevenueEstimate) error
}

// SeedRandomEmployees 插入 n 个随机员工，返回成功插入的数量
func SeedRandomEmployees(s Store, n int, password, emailDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		employee, err := utils.GenerateRandomEmployee(password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机员工", slog.String("error", err.Error()))
			continue
		}

		if err := s.CreateEmployee(employee); err != nil {
			// 随机用户名可能重复，跳过即可
			slog.Error("无法插入员工", slog.String("username", employee.Username), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	return cnt
}

// SeedRandomShiftPreferences 为每个在职的非管理层员工在 [startDate, endDate] 内的每一天生成一条登记
func SeedRandomShiftPreferences(s Store, startDate, endDate domain.Date) (int, error) {
	employees, err := s.GetAllEmployees()
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, employee := range employees {
		if !employee.IsActive || employee.Tier.IsManagerial() {
			continue
		}

		for _, date := range domain.DatesBetween(startDate, endDate) {
			p := utils.GenerateRandomShiftPreference(employee.ID, date)
			if _, err := s.UpsertShiftPreference(p); err != nil {
				slog.Error("无法插入登记", slog.Int64("employee_id", employee.ID), slog.String("date", date.String()), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
	}

	return cnt, nil
}

func SeedRandomRevenueEstimates(s Store, startDate, endDate domain.Date) (int, error) {
	dates := domain.DatesBetween(startDate, endDate)
	estimates := make([]*domain.RevenueEstimate, 0, len(dates))
	for _, date := range dates {
		estimates = append(estimates, utils.GenerateRandomRevenueEstimate(date))
	}

	if err := s.UpsertRevenueEstimates(estimates); err != nil {
		return 0, err
	}

	return len(estimates), nil
}

type demoEmployee struct {
	Username string
	FullName string
	Tier     domain.Tier
}

var demoEmployees = []demoEmployee{
	{"annv", "Nguyễn Văn An", domain.TierFullTime},
	{"binhtt", "Trần Thị Bình", domain.TierFullTime},
	{"cuonglm", "Lê Minh Cường", domain.TierCasual},
	{"dungpt", "Phạm Thu Dung", domain.TierCasual},
	{"haivq", "Võ Quang Hải", domain.TierAssistantManager},
}

type demoSlot struct {
	StartTime string
	EndTime   string
}

// DemoWeekPattern 演示数据中每个员工每周固定登记的时间，key 为 time.Weekday，
// 没有出现的星期几登记为请假
var DemoWeekPattern = map[string]map[time.Weekday]demoSlot{
	"annv": {
		time.Monday: {"08:00", "12:00"}, time.Tuesday: {"08:00", "12:00"}, time.Wednesday: {"08:00", "16:00"},
		time.Thursday: {"08:00", "12:00"}, time.Friday: {"08:00", "16:00"},
	},
	"binhtt": {
		time.Monday: {"13:00", "21:00"}, time.Wednesday: {"13:00", "21:00"}, time.Friday: {"13:00", "21:00"},
		time.Saturday: {"09:00", "17:00"}, time.Sunday: {"09:00", "17:00"},
	},
	"cuonglm": {
		time.Friday: {"17:00", "22:00"}, time.Saturday: {"17:00", "22:00"}, time.Sunday: {"17:00", "22:00"},
	},
	"dungpt": {
		time.Tuesday: {"07:30", "11:30"}, time.Thursday: {"07:30", "11:30"}, time.Saturday: {"07:00", "13:00"},
	},
	"haivq": {
		time.Monday: {"09:00", "18:00"}, time.Tuesday: {"09:00", "18:00"}, time.Wednesday: {"09:00", "18:00"},
		time.Thursday: {"09:00", "18:00"}, time.Friday: {"09:00", "18:00"},
	},
}

// SeedDemoData 插入一组固定的演示员工，并按 DemoWeekPattern 为 [startDate, endDate] 生成登记。
// 已存在的员工会被复用。
func SeedDemoData(s Store, startDate, endDate domain.Date, password, emailDomain string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	dates := domain.DatesBetween(startDate, endDate)
	for _, demo := range demoEmployees {
		employee, err := s.GetEmployeeByUsername(demo.Username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				employee = &domain.Employee{
					Username:     demo.Username,
					PasswordHash: string(passwordHash),
					FullName:     demo.FullName,
					Email:        demo.Username + "@" + emailDomain,
					Role:         domain.RoleStaff,
					Tier:         demo.Tier,
				}
				if err := s.CreateEmployee(employee); err != nil {
					return err
				}
			default:
				return err
			}
		}

		pattern := DemoWeekPattern[demo.Username]
		for _, date := range dates {
			p := &domain.ShiftPreference{
				EmployeeID: employee.ID,
				Date:       date,
				Status:     domain.PreferenceStatusPending,
			}

			slot, ok := pattern[date.Weekday()]
			if ok {
				p.StartTime, p.EndTime = &slot.StartTime, &slot.EndTime
			} else {
				p.IsOff = true
			}

			if _, err := s.UpsertShiftPreference(p); err != nil {
				slog.Error("插入演示登记失败", slog.String("username", demo.Username), slog.String("date", date.String()), slog.String("error", err.Error()))
				continue
			}
		}
	}

	if _, err := SeedRandomRevenueEstimates(s, startDate, endDate); err != nil {
		return err
	}

	slog.Info("插入演示数据完成", slog.Int("employees", len(demoEmployees)), slog.Int("days", len(dates)))
	return nil
}
