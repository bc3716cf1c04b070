package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/api"
	"github.com/beka-birhanu/vinom-pathfinder/api/identity"
	runsapi "github.com/beka-birhanu/vinom-pathfinder/api/runs"
	"github.com/beka-birhanu/vinom-pathfinder/config"
	"github.com/beka-birhanu/vinom-pathfinder/driver"
	"github.com/beka-birhanu/vinom-pathfinder/executor"
	"github.com/beka-birhanu/vinom-pathfinder/explorer"
	logger "github.com/beka-birhanu/vinom-pathfinder/infrastruture/log"
	"github.com/beka-birhanu/vinom-pathfinder/infrastruture/repo"
	"github.com/beka-birhanu/vinom-pathfinder/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-pathfinder/infrastruture/token"
	"github.com/beka-birhanu/vinom-pathfinder/pathfind"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	pb "github.com/beka-birhanu/vinom-pathfinder/protocol/pb_encoder"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/beka-birhanu/vinom-pathfinder/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roleExplorer = "explorer"
	roleDriver   = "driver"
	roleExecutor = "executor"
	roleAPI      = "api"
	roleAll      = "all"
	roleToken    = "token"

	dialRetryWait = 500 * time.Millisecond
	tokenTTL      = 24 * time.Hour
	runsTable     = "runs"
)

// Global variables for dependencies
var (
	role        string
	runID       uuid.UUID
	appLogger   *logger.Logger
	encoder     protocol.Encoder
	mongoClient *mongo.Client
	sqliteRepo  *repo.SQLiteRunRepo
	redisClient *redis.Client
	runService  *service.RunService
)

func parseFlags() {
	flag.StringVar(&role, "role", roleAll, "explorer, driver, executor, api, all or token")
	flag.IntVar(&config.Envs.GridSize, "l", config.Envs.GridSize, "side of the explorer's initial map")
	flag.IntVar(&config.Envs.ExecutorPort, "fc", config.Envs.ExecutorPort, "port the executor listens on")
	flag.IntVar(&config.Envs.DriverPort, "cm", config.Envs.DriverPort, "port the driver listens on")
	flag.IntVar(&config.Envs.RESTPort, "rp", config.Envs.RESTPort, "port of the REST API")
	flag.Parse()
}

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	l.SetDebug(config.Envs.LogDebug)
	return l
}

func initRunID() {
	if config.Envs.RunID == "" {
		runID = uuid.New()
		if role != roleAll {
			appLogger.Warning("RUN_ID not set; the other roles will record under different ids")
		}
		appLogger.Info(fmt.Sprintf("Run %s", runID))
		return
	}

	var err error
	runID, err = uuid.Parse(config.Envs.RunID)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Parsing RUN_ID: %v", err))
		os.Exit(1)
	}
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(connectCtx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRunRepo(ctx context.Context) i.RunRepo {
	switch config.Envs.ResultsStore {
	case "mongo":
		initMongo(ctx)
		appLogger.Info("Mongo run repository initialized")
		return repo.NewMongoRunRepo(mongoClient, config.Envs.DBName, runsTable)
	case "sqlite":
		sqliteRepo = repo.NewSQLiteRunRepo(config.Envs.SQLitePath)
		if err := sqliteRepo.Init(ctx); err != nil {
			appLogger.Error(fmt.Sprintf("Opening sqlite store: %v", err))
			os.Exit(1)
		}
		appLogger.Info(fmt.Sprintf("SQLite run repository initialized at %s", config.Envs.SQLitePath))
		return sqliteRepo
	case "file":
		r, err := repo.NewFileRunRepo(config.Envs.ResultsDir)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Creating file store: %v", err))
			os.Exit(1)
		}
		appLogger.Info(fmt.Sprintf("File run repository initialized at %s", config.Envs.ResultsDir))
		return r
	default:
		appLogger.Error(fmt.Sprintf("Unknown RESULTS_STORE %q", config.Envs.ResultsStore))
		os.Exit(1)
		return nil
	}
}

func initRunBoard(ctx context.Context) i.RunBoard {
	if config.Envs.RedisAddr == "" {
		appLogger.Info("REDIS_ADDR not set; run leaderboard disabled")
		return nil
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
	return sortedstorage.NewRedisRunBoard(redisClient, "")
}

func initRunService(ctx context.Context) {
	var err error
	runService, err = service.NewRunService(initRunRepo(ctx), initRunBoard(ctx), appLogger)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating run service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Run service initialized")
}

func closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if mongoClient != nil {
		_ = mongoClient.Disconnect(ctx)
	}
	if sqliteRepo != nil {
		_ = sqliteRepo.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func initWorld() *executor.World {
	var (
		w   *executor.World
		err error
	)
	if config.Envs.WorldFile != "" {
		w, err = executor.LoadWorld(config.Envs.WorldFile)
	} else {
		w, err = executor.Generate(executor.GeneratorConfig{
			Kind:              config.Envs.WorldGenerator,
			Size:              config.Envs.GridSize,
			FrozenProbability: config.Envs.FrozenProbability,
			ExpandProbability: config.Envs.ExpandProbability,
			Seed:              config.Envs.WorldSeed,
		})
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating world: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("World %dx%d\n%s", w.Width(), w.Height(), w))
	return w
}

func enumerator() pathfind.Enumerator {
	return pathfind.DFSEnumerator{Limit: config.Envs.MaxRoutes}
}

func addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

func transportOptions(l *logger.Logger) []protocol.Option {
	return []protocol.Option{
		protocol.WithLogger(l.Writer()),
		protocol.WithDialRetries(config.Envs.DialRetries, dialRetryWait),
	}
}

func runExecutor(ctx context.Context) error {
	l := newLogger("EXECUTOR", config.ColorBlue)
	world := initWorld()
	if err := runService.RecordWorld(ctx, runID, world.Rows()); err != nil {
		return err
	}

	conn, err := protocol.Listen(ctx, addr(config.Envs.HostIP, config.Envs.ExecutorPort), transportOptions(l)...)
	if err != nil {
		return fmt.Errorf("waiting for driver: %w", err)
	}

	ex, err := executor.New(executor.Config{Conn: conn, Encoder: encoder, World: world, Logger: l})
	if err != nil {
		_ = conn.Close()
		return err
	}
	return ex.Serve(ctx)
}

func runDriver(ctx context.Context) error {
	l := newLogger("DRIVER", config.ColorMagenta)
	opts := transportOptions(l)

	// Listen before dialing so the explorer can connect while the executor starts.
	ln, err := protocol.NewListener(addr(config.Envs.HostIP, config.Envs.DriverPort), opts...)
	if err != nil {
		return err
	}
	defer ln.Close()

	down, err := protocol.Dial(ctx, addr(config.Envs.ExecutorHost, config.Envs.ExecutorPort), opts...)
	if err != nil {
		return fmt.Errorf("dialing executor: %w", err)
	}
	up, err := ln.Accept(ctx)
	if err != nil {
		_ = down.Close()
		return fmt.Errorf("waiting for explorer: %w", err)
	}

	dr, err := driver.New(driver.Config{Explorer: up, Executor: down, Encoder: encoder, Logger: l})
	if err != nil {
		_ = up.Close()
		_ = down.Close()
		return err
	}
	trials, err := dr.Run(ctx)
	if err != nil {
		return err
	}
	return runService.RecordTrials(ctx, runID, trials)
}

func runExplorer(ctx context.Context) error {
	l := newLogger("EXPLORER", config.ColorCyan)

	conn, err := protocol.Dial(ctx, addr(config.Envs.DriverHost, config.Envs.DriverPort), transportOptions(l)...)
	if err != nil {
		return fmt.Errorf("dialing driver: %w", err)
	}

	exp, err := explorer.New(explorer.Config{
		Size:       config.Envs.GridSize,
		Conn:       conn,
		Encoder:    encoder,
		Enumerator: enumerator(),
		MaxRounds:  config.Envs.MaxRounds,
		Logger:     l,
	})
	if err != nil {
		_ = conn.Close()
		return err
	}
	report, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	return runService.RecordOutcome(ctx, runID, report.Status, report.Rounds)
}

func runAll(ctx context.Context) error {
	world := initWorld()
	if err := runService.RecordWorld(ctx, runID, world.Rows()); err != nil {
		return err
	}

	res, err := session.Run(ctx, session.Config{
		Size:           config.Envs.GridSize,
		World:          world,
		Encoder:        encoder,
		Enumerator:     enumerator(),
		MaxRounds:      config.Envs.MaxRounds,
		ExplorerLogger: newLogger("EXPLORER", config.ColorCyan),
		DriverLogger:   newLogger("DRIVER", config.ColorMagenta),
		ExecutorLogger: newLogger("EXECUTOR", config.ColorBlue),
	})
	if err != nil {
		return err
	}

	if err := runService.RecordTrials(ctx, runID, res.Trials); err != nil {
		return err
	}
	return runService.RecordOutcome(ctx, runID, res.Report.Status, res.Report.Rounds)
}

func initTokenizer() i.Tokenizer {
	ts, err := token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating JWT tokenizer: %v", err))
		os.Exit(1)
	}
	appLogger.Info("JWT Tokenizer initialized")
	return ts
}

func runAPI(ctx context.Context) error {
	apiLogger := newLogger("API", config.ColorGreen)
	gin.SetMode(config.Envs.GinMode)
	router := api.NewRouter(api.Config{
		Addr:                    addr(config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api.Controller{runsapi.NewRunsController(runService, apiLogger)},
		AuthorizationMiddleware: identity.Authoriz(initTokenizer()),
	})
	apiLogger.Info(fmt.Sprintf("Serving on %s", addr(config.Envs.HostIP, config.Envs.RESTPort)))
	return router.Run(ctx)
}

func mintToken() error {
	t, err := initTokenizer().Generate(i.OperatorClaims("operator"), tokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(t)
	return nil
}

func main() {
	parseFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize dependencies
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	appLogger.SetDebug(config.Envs.LogDebug)
	encoder = &pb.Protobuf{}

	if role == roleToken {
		if err := mintToken(); err != nil {
			appLogger.Error(fmt.Sprintf("Minting token: %v", err))
			os.Exit(1)
		}
		return
	}

	initRunService(ctx)
	defer closeStores()

	var err error
	switch role {
	case roleExecutor:
		initRunID()
		err = runExecutor(ctx)
	case roleDriver:
		initRunID()
		err = runDriver(ctx)
	case roleExplorer:
		initRunID()
		err = runExplorer(ctx)
	case roleAll:
		initRunID()
		err = runAll(ctx)
	case roleAPI:
		err = runAPI(ctx)
	default:
		err = fmt.Errorf("unknown role %q", role)
	}

	if err != nil {
		appLogger.Error(fmt.Sprintf("%s: %v", role, err))
		closeStores()
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("%s finished", role))
}
