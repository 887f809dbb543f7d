package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiquiz-server/internal/config"
	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/game"
	"quiquiz-server/internal/infra/memory"
	pgloader "quiquiz-server/internal/infra/postgres"
	redisinfra "quiquiz-server/internal/infra/redis"
	transport "quiquiz-server/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// questionRepository is the union of what the coordinator and the query API
// need from a question bank.
type questionRepository interface {
	game.QuestionSource
	transport.QuestionCatalog
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "3000"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ThemeLoader = memory.NewStaticBank(defaultCatalog())
	if pool != nil {
		loader = pgloader.NewThemeLoader(pool)
	}

	themeTTL := config.TTLDuration(cfg.Themes.TTL, 10*time.Minute)
	var questions questionRepository
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, loader, themeTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, themeTTL)
	}

	var rooms game.RoomStore
	if redisClient != nil {
		rooms = redisinfra.NewRoomStore(redisClient, redisTTL)
	} else {
		rooms = memory.NewRoomStore()
	}

	hub := transport.NewHub()
	coordinator := game.NewCoordinator(rooms, questions, hub)
	wsHandler := transport.NewWSHandler(hub, coordinator)
	apiHandler := transport.NewAPIHandler(questions, coordinator)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiquiz server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// defaultCatalog provides a built-in question bank; swap in the Postgres
// loader for the full data set in production.
func defaultCatalog() []memory.Category {
	return []memory.Category{
		{
			Name: "Géographie",
			Icon: "🌍",
			Themes: []memory.ThemeSet{
				{
					ID:   "capitals",
					Name: "Capitales du monde",
					Questions: []domain.Question{
						{Prompt: "Quelle est la capitale de la France ?", Answer: "Paris"},
						{Prompt: "Quelle est la capitale de l'Italie ?", Answer: "Rome"},
						{Prompt: "Quelle est la capitale de l'Espagne ?", Answer: "Madrid"},
						{Prompt: "Quelle est la capitale du Royaume-Uni ?", Answer: "Londres"},
						{Prompt: "Quelle est la capitale de l'Allemagne ?", Answer: "Berlin"},
						{Prompt: "Quelle est la capitale du Portugal ?", Answer: "Lisbonne"},
						{Prompt: "Quelle est la capitale de la Belgique ?", Answer: "Bruxelles"},
						{Prompt: "Quelle est la capitale du Japon ?", Answer: "Tokyo"},
						{Prompt: "Quelle est la capitale du Canada ?", Answer: "Ottawa"},
						{Prompt: "Quelle est la capitale de l'Australie ?", Answer: "Canberra"},
						{Prompt: "Quelle est la capitale de l'Égypte ?", Answer: "Le Caire"},
						{Prompt: "Quelle est la capitale de la Norvège ?", Answer: "Oslo"},
					},
				},
				{
					ID:   "departments",
					Name: "Départements français",
					Questions: []domain.Question{
						{Prompt: "Quel est le numéro du département du Rhône ?", Answer: "69"},
						{Prompt: "Quel est le numéro du département de la Gironde ?", Answer: "33"},
						{Prompt: "Quel est le numéro du département de la Loire-Atlantique ?", Answer: "44"},
						{Prompt: "Quel est le numéro du département des Bouches-du-Rhône ?", Answer: "13"},
						{Prompt: "Quel est le numéro du département du Nord ?", Answer: "59"},
						{Prompt: "Quel département porte le numéro 75 ?", Answer: "Paris"},
						{Prompt: "Quel département porte le numéro 29 ?", Answer: "Finistère"},
						{Prompt: "Quel département porte le numéro 67 ?", Answer: "Bas-Rhin"},
						{Prompt: "Quel département porte le numéro 06 ?", Answer: "Alpes-Maritimes"},
						{Prompt: "Quel département porte le numéro 31 ?", Answer: "Haute-Garonne"},
					},
				},
				{
					ID:    "departments-map",
					Name:  "Départements (Carte)",
					IsMap: true,
					Questions: []domain.Question{
						{Prompt: "Cliquez sur le département de la Savoie", Answer: "73"},
						{Prompt: "Cliquez sur le département du Var", Answer: "83"},
						{Prompt: "Cliquez sur le département de la Manche", Answer: "50"},
						{Prompt: "Cliquez sur le département du Cantal", Answer: "15"},
						{Prompt: "Cliquez sur le département des Vosges", Answer: "88"},
						{Prompt: "Cliquez sur le département de la Dordogne", Answer: "24"},
					},
				},
			},
		},
	}
}
