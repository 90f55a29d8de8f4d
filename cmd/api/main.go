package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/cache"
	"github.com/crewboard/daily-schedule/backend/internal/config"
	"github.com/crewboard/daily-schedule/backend/internal/dispatch"
	"github.com/crewboard/daily-schedule/backend/internal/handler"
	"github.com/crewboard/daily-schedule/backend/internal/notify"
	"github.com/crewboard/daily-schedule/backend/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/wneessen/go-mail"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
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

	/**********************************************
	 * 创建 repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	drafts := cache.NewDraftStore(rdb,
		time.Duration(cfg.Schedule.DraftExpiration)*time.Second,
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
	)

	/**********************************************
	 * 创建消息发送方式
	 **********************************************/
	var sender dispatch.Sender
	switch cfg.Dispatch.Mode {
	case config.DispatchModeQueue:
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		// 建立通道
		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		defer ch.Close()

		// 声明队列
		if _, err := notify.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}

		sender = notify.NewQueuePublisher(ch, cfg.RabbitMQ.Queue)
	default:
		client, err := mail.NewClient(cfg.SMTP.Host,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithSSL(),
			mail.WithPort(cfg.SMTP.Port),
			mail.WithUsername(cfg.SMTP.Username),
			mail.WithPassword(cfg.SMTP.Password),
			mail.WithTimeout(time.Duration(cfg.SMTP.DialTimeout)*time.Second),
		)
		if err != nil {
			logger.Error("无法创建邮件客户端", "error", err)
			return
		}
		defer client.Close()

		sender = notify.NewSMTPSender(client, cfg.SMTP.From)
	}
	logger.Info("消息发送方式", "mode", cfg.Dispatch.Mode)

	dispatcher := dispatch.New(repo.Directory(), sender,
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(dispatch.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")),
		dispatch.WithSendTimeout(cfg.SendTimeout()),
		dispatch.WithDefaultLanguage(cfg.Dispatch.DefaultLanguage),
	)

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, drafts, dispatcher)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", "error", err)
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", "error", err)
	}
	logger.Info("服务器已成功关闭")
}
