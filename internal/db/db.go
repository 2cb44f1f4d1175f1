package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jantaller/swapta-api/internal/config"
)

// Pool — общий пул соединений с Postgres
var Pool *pgxpool.Pool

// queryTimeout ограничивает любой одиночный запрос к базе
const queryTimeout = 5 * time.Second

// InitDB создает пул соединений и проверяет доступность базы
func InitDB(cfg *config.Config) error {
	// URL содержит пароль, в лог уходят только хост и имя базы
	log.Printf("Подключение к базе данных %s/%s", cfg.DatabaseConfig.Host, cfg.DatabaseConfig.Name)

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("ошибка разбора строки подключения: %w", err)
	}

	// Нагрузка — короткие CRUD-запросы от обработчиков API плюс
	// пуши WebSocket; долгоживущие простаивающие соединения не нужны
	poolConfig.MaxConns = 16
	poolConfig.MinConns = 4
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	Pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("ошибка создания пула соединений: %w", err)
	}

	if err = Pool.Ping(ctx); err != nil {
		return fmt.Errorf("база данных недоступна: %w", err)
	}

	log.Println("✅ База данных подключена")
	return nil
}

// CloseDB закрывает пул соединений
func CloseDB() {
	if Pool != nil {
		Pool.Close()
	}
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}
