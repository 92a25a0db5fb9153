package handler

import (
	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/user"
	"chatrelay/internal/configs"
)

// AppDeps bundles the shared components handlers need.
type AppDeps struct {
	Hub      *chat.Hub
	Registry *user.Registry
	Config   *configs.AppConfig
}
