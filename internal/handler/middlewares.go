package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// scheduleDate 解析 URL 中的日期并统一为 2006-01-02 格式
func (h *Handler) scheduleDate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date, err := utils.ParseScheduleDate(chi.URLParam(r, "date"), h.now())
		if err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), DateCtx, date)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) dateLock(date string) *sync.Mutex {
	mu, _ := h.dateLocks.LoadOrStore(date, &sync.Mutex{})
	return mu
}

// lockDate 串行化同一天的请求，保证草稿的读取、修改和写回之间不会交错
func (h *Handler) lockDate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu := h.dateLock(r.Context().Value(DateCtx).(string))
		mu.Lock()
		defer mu.Unlock()
		next.ServeHTTP(w, r)
	})
}
