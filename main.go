package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/joho/godotenv"

	"OrandaBot/internal/api"
	"OrandaBot/internal/config"
	"OrandaBot/internal/db"
	"OrandaBot/internal/handlers"
	"OrandaBot/internal/lifecycle"
	"OrandaBot/internal/session"
	"OrandaBot/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	store, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer store.Close()

	sessionStore, closeSessions := newSessionStore(cfg)
	defer closeSessions()
	sessionManager := session.NewManager(sessionStore)

	bot, err := telegram_api.InitBot(cfg.TelegramToken, cfg.IsDev())
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = bot.Username()
	}

	messenger := telegram_api.NewMessenger(bot, cfg.SendTimeout)
	controller := lifecycle.NewController(store, messenger, sessionManager, lifecycle.Config{
		GroupChatID: cfg.GroupChatID,
		Currency:    cfg.Currency,
		ClearTokens: cfg.ClearTokens,
		DoneTokens:  cfg.DoneTokens,
	})

	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{
		Config:         cfg,
		Controller:     controller,
		Messenger:      messenger,
		Store:          store,
		SessionManager: sessionManager,
	})

	// --- HTTP API (необязательно) ---
	var httpServer *http.Server
	if cfg.Port != "" {
		router := api.NewRouter(api.ApiDependencies{
			Config:    cfg,
			Store:     store,
			SecretKey: cfg.TelegramToken,
		})
		httpServer = api.NewHTTPServer(":"+cfg.Port, router)
		go func() {
			log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
			}
		}()
	}

	// --- Запуск самого бота ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	queue := session.NewQueue()

	log.Println("Бот запущен и готов к работе...")
	runUpdateLoop(ctx, updates, queue, botHandler)

	// --- Остановка ---
	log.Println("Получен сигнал остановки, завершаем работу...")
	bot.StopReceivingUpdates()
	if n := queue.Pending(); n > 0 {
		log.Printf("Ожидаем завершения обработки в %d разговорах...", n)
	}
	queue.Wait()
	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ошибка остановки HTTP-сервера: %v", err)
		}
	}
	log.Println("Бот остановлен.")
}

// runUpdateLoop раздаёт обновления по очередям разговоров, пока не отменён ctx.
// Обработчики получают собственный контекст, чтобы начатые задачи завершились при остановке.
func runUpdateLoop(ctx context.Context, updates tgbotapi.UpdatesChannel, queue *session.Queue, botHandler *handlers.BotHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			key, ok := handlers.ConversationKeyForUpdate(update)
			if !ok {
				continue
			}
			queue.Submit(key, func() {
				botHandler.HandleUpdate(context.Background(), update)
			})
		}
	}
}

// newSessionStore выбирает хранилище состояний мастера: память или Redis.
func newSessionStore(cfg *config.Config) (session.Store, func()) {
	if cfg.SessionBackend != "redis" {
		log.Println("Состояния мастера хранятся в памяти процесса.")
		return session.NewMemoryStore(), func() {}
	}
	rs, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось подключиться к Redis: %v", err)
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Printf("Ошибка закрытия Redis: %v", err)
		}
	}
}
