package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
)

// Settings is the flat company / integration configuration. It is the only
// state that survives a restart; everything else lives in memory.
type Settings struct {
	CompanyName    string `json:"company_name"`
	CompanyVat     string `json:"company_vat"`
	CompanyAddress string `json:"company_address"`
	CompanyEmail   string `json:"company_email"`
	CompanyPhone   string `json:"company_phone"`

	PeppolEnabled       bool   `json:"peppol_enabled"`
	PeppolParticipantId string `json:"peppol_participant_id"`
	PeppolApiKey        string `json:"peppol_api_key"`

	ShopifyEnabled    bool   `json:"shopify_enabled"`
	ShopifyShopDomain string `json:"shopify_shop_domain"`
	ShopifyApiToken   string `json:"shopify_api_token"`
}

var (
	settingsMu sync.Mutex
	settings   *Settings
)

func settingsFilePath() string {
	path := strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	if path == "" {
		path = "settings.json"
	}
	return path
}

// LoadSettings reads the settings file once and caches it. A missing file is
// not an error; it yields zero-value settings.
func LoadSettings() (*Settings, error) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	if settings != nil {
		return settings, nil
	}

	s := &Settings{}
	data, err := os.ReadFile(settingsFilePath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		settings = s
		return settings, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	settings = s
	return settings, nil
}

func SaveSettings(s *Settings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(settingsFilePath(), data, 0644); err != nil {
		return err
	}
	settings = s
	return nil
}
