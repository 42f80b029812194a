package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/config"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/repository"
	"github.com/tiemnho-dev/shift-roster/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var startDateStr string
	var days int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机登记, 3: 插入随机营收预估, 4: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.StringVar(&startDateStr, "start", "", "登记和营收的起始日期 (YYYY-MM-DD)，默认为今天")
	flag.IntVar(&days, "days", 7, "从起始日期开始的天数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	startDate := domain.DateOf(time.Now().In(cfg.Location()))
	if startDateStr != "" {
		startDate, err = domain.ParseDate(startDateStr)
		if err != nil {
			logger.Error("起始日期不合法", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if days <= 0 {
		logger.Error("请输入合法的天数")
		os.Exit(1)
	}
	endDate := startDate.AddDays(days - 1)

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}
		cnt := seed.SeedRandomEmployees(repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		cnt, err := seed.SeedRandomShiftPreferences(repo, startDate, endDate)
		if err != nil {
			slog.Error("无法插入登记", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入登记成功", slog.Int("count", cnt), slog.String("start", startDate.String()), slog.String("end", endDate.String()))
	case 3:
		cnt, err := seed.SeedRandomRevenueEstimates(repo, startDate, endDate)
		if err != nil {
			slog.Error("无法插入营收预估", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入营收预估成功", slog.Int("count", cnt))
	case 4:
		if err := seed.SeedDemoData(repo, startDate, endDate, cfg.Seed.User.Password, cfg.Email.UserDomain); err != nil {
			slog.Error("插入演示数据失败", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
