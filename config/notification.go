package config

import (
	"os"
	"strings"
	"sync"
)

// WhatsAppSettings holds the outbound notification gateway configuration.
// Delivery itself lives in a separate service; this backend only carries the
// settings so callers at the boundary can be wired without process-wide globals.
type WhatsAppSettings struct {
	BaseURL string
	Token   string
	GroupId string
}

var (
	waOnce     sync.Once
	waSettings WhatsAppSettings
)

func GetWhatsAppSettings() WhatsAppSettings {
	waOnce.Do(func() {
		waSettings = WhatsAppSettings{
			BaseURL: strings.TrimSpace(os.Getenv("WHATSAPP_BASE_URL")),
			Token:   strings.TrimSpace(os.Getenv("WHATSAPP_TOKEN")),
			GroupId: strings.TrimSpace(os.Getenv("WHATSAPP_GROUP_ID")),
		}
	})
	return waSettings
}

func (s WhatsAppSettings) Enabled() bool {
	return s.BaseURL != "" && s.Token != "" && s.GroupId != ""
}
