package config

import "time"

type ServiceConfig struct {
	Name                string   `yaml:"name"`
	Port                string   `yaml:"port" validate:"required"`
	ChatHost            string   `yaml:"chat_host"`
	PoolMaxWorkers      int      `yaml:"pool_max_workers"`
	PoolQueue           int      `yaml:"pool_queue"`
	MaxConnsPerIP       int      `yaml:"max_conns_per_ip"`
	CloudLoggingEnabled bool     `yaml:"cloud_logging_enabled"`
	TrustedOrigins      []string `yaml:"trusted_origins"`
	HistoryLimit        int      `yaml:"history_limit" validate:"gte=0"`
	HistoryReplay       int      `yaml:"history_replay" validate:"gte=0"`
	RateLimitMax        int      `yaml:"rate_limit_max" validate:"gte=0"`
	RateLimitWindowSec  int      `yaml:"rate_limit_window_sec" validate:"gte=0"`
	Firestore           *firestore
}

type firestore struct {
	ProjectID               string `yaml:"project_id"`
	InventoryCollectionName string `yaml:"inventory_collection_name"`
}

// GetName - the instance name used in logs and the api welcome message
func (s *ServiceConfig) GetName() string {
	if s.Name == "" {
		return "castline"
	}
	return s.Name
}

func (s *ServiceConfig) GetProjectID() string {
	if s.Firestore == nil {
		return ""
	}
	return s.Firestore.ProjectID
}

func (s *ServiceConfig) GetInventoryCollectionName() string {
	if s.Firestore == nil || s.Firestore.InventoryCollectionName == "" {
		return "inventories"
	}
	return s.Firestore.InventoryCollectionName
}

func (s *ServiceConfig) GetTrustedOrigins() []string {
	return s.TrustedOrigins
}

// GetHistoryLimit - the max number of chat messages kept in the bounded log
func (s *ServiceConfig) GetHistoryLimit() int {
	if s.HistoryLimit < 1 {
		return 1000
	}
	return s.HistoryLimit
}

// GetHistoryReplay - how many messages to replay to a newly authenticated client
func (s *ServiceConfig) GetHistoryReplay() int {
	if s.HistoryReplay < 1 {
		return 50
	}
	return s.HistoryReplay
}

func (s *ServiceConfig) GetRateLimitMax() int {
	if s.RateLimitMax < 1 {
		return 30
	}
	return s.RateLimitMax
}

func (s *ServiceConfig) GetRateLimitWindow() time.Duration {
	if s.RateLimitWindowSec < 1 {
		return 60 * time.Second
	}
	return time.Duration(s.RateLimitWindowSec) * time.Second
}

func (s *ServiceConfig) GetMaxConnsPerIP() int {
	if s.MaxConnsPerIP < 1 {
		return 3
	}
	return s.MaxConnsPerIP
}
