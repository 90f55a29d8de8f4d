package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/config"
	"github.com/crewboard/daily-schedule/backend/internal/repository"
	"github.com/crewboard/daily-schedule/backend/internal/seed"
	"github.com/crewboard/daily-schedule/backend/internal/utils"
	"github.com/spf13/cobra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "向数据库插入测试数据",
	SilenceUsage: true,
}

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "插入随机员工，或者用 --csv 从文件导入",
	RunE:  runEmployees,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "插入随机工地",
	RunE:  runJobs,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [date]",
	Short: "用现有的员工和工地生成某一天的排班（默认今天）",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchedule,
}

func init() {
	employeesCmd.Flags().IntP("number", "n", 20, "要插入的员工数量")
	employeesCmd.Flags().String("gateway", "sms.example.com", "联系地址使用的短信网关域名")
	employeesCmd.Flags().String("csv", "", "从 CSV 文件导入员工（姓名,电话,联系地址,语言）")
	jobsCmd.Flags().IntP("number", "n", 5, "要插入的工地数量")

	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRepository() (*repository.Repository, func(), error) {
	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	return repository.NewRepository(cfg, dbpool), func() { dbpool.Close() }, nil
}

func runEmployees(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		cnt, err := seed.ImportEmployees(repo, file)
		if err != nil {
			return err
		}
		slog.Info("导入员工完成", "count", cnt)
		return nil
	}

	n, _ := cmd.Flags().GetInt("number")
	if n <= 0 {
		return fmt.Errorf("请输入合法的员工数量")
	}
	gateway, _ := cmd.Flags().GetString("gateway")

	slog.Info("插入员工完成", "count", seed.SeedRandomEmployees(repo, n, gateway))
	return nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("number")
	if n <= 0 {
		return fmt.Errorf("请输入合法的工地数量")
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	slog.Info("插入工地完成", "count", seed.SeedRandomJobs(repo, n))
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	expr := "today"
	if len(args) == 1 {
		expr = args[0]
	}
	date, err := utils.ParseScheduleDate(expr, time.Now())
	if err != nil {
		return err
	}

	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	cnt, err := seed.SeedSchedule(repo, date)
	if err != nil {
		return err
	}
	slog.Info("生成排班完成", "date", date, "rows", cnt)
	return nil
}
