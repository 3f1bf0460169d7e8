package handler

import (
	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/localization"
	"chatterbox/backend/internal/storage"
)

// Handler carries the dependencies shared by the HTTP endpoints.
type Handler struct {
	Hub       *chathub.ManagerService
	Storage   storage.Storage
	Localizer *localization.Localizer
	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, l *localization.Localizer, jwtSecret []byte) *Handler {
	return &Handler{Hub: hub, Storage: s, Localizer: l, JWTSecret: jwtSecret}
}

// lang picks the response language from the Accept-Language header.
func lang(header string) string {
	if len(header) >= 2 {
		return header[:2]
	}
	return localization.DefaultLang
}
