package database

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	if config.MaxOpenConns != 25 {
		t.Errorf("Expected MaxOpenConns to be 25, got %d", config.MaxOpenConns)
	}

	if config.MaxIdleConns != 10 {
		t.Errorf("Expected MaxIdleConns to be 10, got %d", config.MaxIdleConns)
	}

	if config.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected ConnMaxLifetime to be 1 hour, got %v", config.ConnMaxLifetime)
	}

	if config.ConnMaxIdleTime != time.Minute*30 {
		t.Errorf("Expected ConnMaxIdleTime to be 30 minutes, got %v", config.ConnMaxIdleTime)
	}

	if config.LogLevel != logger.Info {
		t.Errorf("Expected LogLevel to be Info, got %v", config.LogLevel)
	}
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil)

	if err == nil {
		t.Error("Expected error due to empty DSN, got nil")
	}
}

func TestNewDatabasePool_InMemorySqlite(t *testing.T) {
	config := DefaultPoolConfig()
	config.DSN = ":memory:"
	config.LogLevel = logger.Silent

	pool, err := NewDatabasePool(config)
	if err != nil {
		t.Fatalf("Expected in-memory pool to open, got: %v", err)
	}
	defer pool.Close()

	if err := pool.Health(); err != nil {
		t.Errorf("Expected healthy pool, got: %v", err)
	}

	stats := pool.Stats()
	if _, hasError := stats["error"]; hasError {
		t.Errorf("Expected stats without error, got: %v", stats["error"])
	}
}

func TestNewDatabasePool_NegativeLimits(t *testing.T) {
	config := &PoolConfig{
		DSN:             ":memory:",
		MaxOpenConns:    -1,
		MaxIdleConns:    -1,
		ConnMaxLifetime: -time.Hour,
		ConnMaxIdleTime: -time.Minute,
		LogLevel:        logger.Silent,
	}

	if _, err := NewDatabasePool(config); err == nil {
		t.Error("Expected error for negative pool limits, got nil")
	}
}

func TestDatabasePool_Stats_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{
		DB: nil,
		config: &PoolConfig{
			MaxOpenConns: 10,
		},
	}

	stats := pool.Stats()

	if _, hasError := stats["error"]; !hasError {
		t.Error("Expected error in stats when DB is nil")
	}
}

func TestDatabasePool_Health_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{
		DB: nil,
	}

	if err := pool.Health(); err == nil {
		t.Error("Expected error when checking health with nil DB")
	}
}

func TestDatabasePool_Close_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{
		DB: nil,
	}

	if err := pool.Close(); err != nil {
		t.Errorf("Expected no error when closing nil DB, got: %v", err)
	}
}

func BenchmarkDefaultPoolConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultPoolConfig()
	}
}
