package handler

type ContextKey string

var (
	DateCtx ContextKey = "date"
)
